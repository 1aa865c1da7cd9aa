package telemetry

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	report_resty_request  = "resty.request"
	report_resty_response = "resty.response"
)

type instrumentResty struct {
	tel       API
	idcounter *atomic.Uint64
}

// InstrumentResty reports the start, duration and status of every request
// the client makes. Error statuses are warnings, transport failures are
// reported as broken.
func InstrumentResty(client *resty.Client, tel API) {
	i := instrumentResty{tel: tel, idcounter: &atomic.Uint64{}}

	client.OnBeforeRequest(i.onBeforeRequest)
	client.OnAfterResponse(i.onAfterResponse)
	client.OnError(i.onError)
}

type reqCtxKeyType int

var reqCtxKey reqCtxKeyType

type reqCtx struct {
	id        uint64
	startTime time.Time
}

func (i instrumentResty) onBeforeRequest(_ *resty.Client, req *resty.Request) error {
	id := i.idcounter.Add(1)
	ctx := context.WithValue(req.Context(), reqCtxKey, reqCtx{
		id:        id,
		startTime: time.Now(),
	})
	i.tel.ReportDebug(report_resty_request, id, req.Method, req.URL)

	req.SetContext(ctx)
	return nil
}

func (i instrumentResty) onAfterResponse(_ *resty.Client, res *resty.Response) error {
	info, ok := res.Request.Context().Value(reqCtxKey).(reqCtx)
	if !ok {
		return nil
	}
	duration := time.Since(info.startTime).String()
	if res.IsError() {
		// 429 and 5xx usually mean recreation.gov is throttling us
		i.tel.ReportWarning(report_resty_response, info.id, res.Request.URL, res.Status(), duration)
		return nil
	}
	i.tel.ReportDebug(report_resty_response, info.id, duration, res.Status())
	return nil
}

func (i instrumentResty) onError(req *resty.Request, err error) {
	var duration time.Duration
	info, ok := req.Context().Value(reqCtxKey).(reqCtx)
	if ok {
		duration = time.Since(info.startTime)
	}
	i.tel.ReportBroken(
		report_resty_response,
		err,
		req.Method,
		req.URL,
		duration.String(),
	)
}
