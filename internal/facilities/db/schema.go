package db

import _ "embed"

//go:embed schema.sql
var Schema string

type FacilitySource string

const (
	SOURCE_RIDB FacilitySource = "ridb"
	SOURCE_API  FacilitySource = "api"
)
