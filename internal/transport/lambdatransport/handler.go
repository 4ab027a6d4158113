package lambdatransport

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/aws/aws-lambda-go/events"

	"github.com/awmpietro/guard-patrol-case/internal/app"
	"github.com/awmpietro/guard-patrol-case/internal/transport/patroldto"
)

type Handler struct {
	svc app.PatrolService
}

func NewHandler(svc app.PatrolService) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Patrol(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	if m := req.RequestContext.HTTP.Method; m != "" && m != http.MethodPost {
		return jsonResp(http.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"}), nil
	}

	body, err := readBody(req)
	if err != nil {
		return jsonResp(http.StatusBadRequest, patroldto.InvalidBody("invalid body", err)), nil
	}

	var in patroldto.PatrolRequest
	if err := json.Unmarshal(body, &in); err != nil {
		return jsonResp(http.StatusBadRequest, patroldto.InvalidBody("invalid json", err)), nil
	}

	status, out := patroldto.Dispatch(ctx, h.svc, in)
	return jsonResp(status, out), nil
}

func readBody(req events.APIGatewayV2HTTPRequest) ([]byte, error) {
	if req.IsBase64Encoded {
		return base64.StdEncoding.DecodeString(req.Body)
	}
	return []byte(req.Body), nil
}

func jsonResp(status int, body any) events.APIGatewayV2HTTPResponse {
	b, _ := json.Marshal(body)
	return events.APIGatewayV2HTTPResponse{
		StatusCode: status,
		Headers:    map[string]string{"content-type": "application/json"},
		Body:       string(b),
	}
}
