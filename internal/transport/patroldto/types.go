package patroldto

import (
	"context"
	"net/http"
	"strings"

	"github.com/awmpietro/guard-patrol-case/internal/app"
	"github.com/awmpietro/guard-patrol-case/internal/patrol"
)

type PatrolRequest struct {
	Grid     string `json:"grid"`
	Mode     string `json:"mode,omitempty"`
	Expect   string `json:"expect,omitempty"`
	Obstacle string `json:"obstacle,omitempty"`
	Debug    bool   `json:"debug,omitempty"`
}

func (r PatrolRequest) Options() (app.AnalyzeOptions, error) {
	mode, err := patrol.ParseMode(r.Mode)
	if err != nil {
		return app.AnalyzeOptions{}, err
	}
	return app.AnalyzeOptions{Mode: mode, Expect: r.Expect}, nil
}

type PatrolResponse struct {
	Report *patrol.Report    `json:"report,omitempty"`
	Probe  *app.ProbeResult  `json:"probe,omitempty"`
	Grid   *app.GridInfo     `json:"grid,omitempty"`
	Trace  *app.AnalyzeTrace `json:"trace,omitempty"`
}

// Dispatch runs a decoded request against svc and returns the status and
// body both transports write.
func Dispatch(ctx context.Context, svc app.PatrolService, in PatrolRequest) (int, any) {
	if strings.TrimSpace(in.Obstacle) != "" {
		at, err := patrol.ParsePosition(in.Obstacle)
		if err != nil {
			return http.StatusBadRequest, InvalidBody("invalid obstacle", err)
		}
		res, info, err := svc.Probe(ctx, in.Grid, at)
		if err != nil {
			return http.StatusBadRequest, ErrorBody(err, nil, info)
		}
		return http.StatusOK, PatrolResponse{Probe: res, Grid: info}
	}

	opts, err := in.Options()
	if err != nil {
		return http.StatusBadRequest, InvalidBody("invalid mode", err)
	}

	if in.Debug {
		r, trace, info, err := svc.AnalyzeWithTrace(ctx, in.Grid, opts)
		if err != nil {
			return http.StatusBadRequest, ErrorBody(err, trace, info)
		}
		return http.StatusOK, PatrolResponse{Report: r, Grid: info, Trace: trace}
	}

	r, info, err := svc.Analyze(ctx, in.Grid, opts)
	if err != nil {
		return http.StatusBadRequest, ErrorBody(err, nil, info)
	}
	return http.StatusOK, PatrolResponse{Report: r, Grid: info}
}

func InvalidBody(msg string, err error) map[string]any {
	return map[string]any{"error": msg, "details": err.Error()}
}

func ErrorBody(err error, trace *app.AnalyzeTrace, info *app.GridInfo) map[string]any {
	body := InvalidBody("patrol failed", err)
	if trace != nil {
		body["trace"] = trace
	}
	if info != nil {
		body["grid"] = info
	}
	return body
}
