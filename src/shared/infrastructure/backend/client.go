package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"caja/src/shared/domain/apperror"
	"caja/src/shared/infrastructure/metrics"
	"caja/src/shared/infrastructure/requestctx"

	"github.com/sirupsen/logrus"
)

// maxResponseBytes tope de lectura de una respuesta del backend
const maxResponseBytes = 4 << 20

// Client cliente HTTP para comunicarse con el backend de back-office.
// Traduce fallas de transporte y status HTTP a la taxonomía de apperror.
type Client struct {
	httpClient *http.Client
	baseURL    string
	terminalID string
	log        logrus.FieldLogger
}

// NewClient crea una nueva instancia del cliente
func NewClient(baseURL, terminalID string, timeout time.Duration, log logrus.FieldLogger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL:    strings.TrimRight(baseURL, "/"),
		terminalID: terminalID,
		log:        log,
	}
}

// Do ejecuta una petición JSON. body y out pueden ser nil.
func (c *Client) Do(ctx context.Context, method, path string, body, out any, headers map[string]string) error {
	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("error marshalling request: %w", err)
		}
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.terminalID != "" {
		req.Header.Set("X-Terminal-ID", c.terminalID)
	}
	// Pasar Authorization si existe
	if token := requestctx.AuthTokenFromContext(ctx); token != "" {
		req.Header.Set("Authorization", token)
	}
	if requestID := requestctx.RequestIDFromContext(ctx); requestID != "" {
		req.Header.Set("X-Request-ID", requestID)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.BackendRequestDuration.WithLabelValues(method, "transport_error").Observe(time.Since(start).Seconds())
		c.log.WithError(err).WithField("path", path).Warn("⚠️ backend unreachable")
		return fmt.Errorf("%w: calling backend %s %s: %v", apperror.ErrNetworkFailure, method, path, err)
	}
	defer resp.Body.Close()
	metrics.BackendRequestDuration.WithLabelValues(method, strconv.Itoa(resp.StatusCode)).Observe(time.Since(start).Seconds())

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return fmt.Errorf("%w: reading backend response: %v", apperror.ErrNetworkFailure, err)
	}
	if len(respBody) > maxResponseBytes {
		c.log.WithField("path", path).Warn("⚠️ backend response too large")
		return fmt.Errorf("%w: backend response exceeds %d bytes", apperror.ErrNetworkFailure, maxResponseBytes)
	}

	if err := statusError(resp.StatusCode, respBody); err != nil {
		c.log.WithFields(logrus.Fields{
			"path":   path,
			"status": resp.StatusCode,
		}).Debug("backend rejected request")
		return err
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		// Una respuesta ilegible se trata como falla de red: el estado local no cambia
		return fmt.Errorf("%w: error unmarshalling backend response: %v", apperror.ErrNetworkFailure, err)
	}
	return nil
}

func statusError(status int, body []byte) error {
	if status >= 200 && status < 300 {
		return nil
	}
	msg, code := backendMessage(body)
	switch {
	case code == string(apperror.CodeInsufficientStock):
		return fmt.Errorf("%w: %s", apperror.ErrInsufficientStock, msg)
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("%w: %s", apperror.ErrUnauthenticated, msg)
	case status == http.StatusNotFound:
		return fmt.Errorf("%w: %s", apperror.ErrNotFound, msg)
	case status == http.StatusConflict:
		return fmt.Errorf("%w: %s", apperror.ErrConflict, msg)
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		return fmt.Errorf("%w: %s", apperror.ErrValidation, msg)
	default:
		return fmt.Errorf("%w: backend returned status %d: %s", apperror.ErrNetworkFailure, status, msg)
	}
}

// backendMessage extrae el mensaje y el código de error del backend si vienen en JSON
func backendMessage(body []byte) (string, string) {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
		Code    string `json:"code"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Error != "" {
			return payload.Error, payload.Code
		}
		if payload.Message != "" {
			return payload.Message, payload.Code
		}
	}
	text := strings.TrimSpace(string(body))
	if text == "" {
		return "no details", ""
	}
	return text, ""
}
