// response/success.go
/* Responsible for handling successful API responses. It reads the response body and
unmarshals it based on the content type (JSON or XML), with binary payloads streamed
into a byte slice or io.Writer. */
package response

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sessionkit/go-token-session/logger"
	"go.uber.org/zap"
)

// contentHandler defines the signature for unmarshaling content from an io.Reader.
type contentHandler func(io.Reader, any, logger.Logger, string) error

// responseUnmarshallers maps MIME types to the corresponding contentHandler functions.
var responseUnmarshallers = map[string]contentHandler{
	"application/json": handlerUnmarshalJSON,
	"application/xml":  handlerUnmarshalXML,
	"text/xml":         handlerUnmarshalXML,
}

// HandleSuccessResponse reads the response body and unmarshals it into out based on the
// content type. A nil out skips decoding entirely, for callers interested only in the
// status code.
func HandleSuccessResponse(resp *http.Response, out any, log logger.Logger) error {
	if out == nil || resp.Request.Method == http.MethodDelete {
		return nil
	}

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return log.Error("Failed to read response body", zap.Error(err))
	}

	bodyReader := bytes.NewReader(bodyBytes)
	contentType := resp.Header.Get("Content-Type")
	contentDisposition := resp.Header.Get("Content-Disposition")

	contentTypeNoParams, _ := parseHeader(contentType)

	if handler, ok := responseUnmarshallers[contentTypeNoParams]; ok {
		return handler(bodyReader, out, log, contentType)
	}

	if isBinaryData(contentType, contentDisposition) {
		return handleBinaryData(bodyReader, out, log)
	}

	return log.Error("Unexpected MIME type in response", zap.String("content_type", contentType))
}

// handlerUnmarshalJSON unmarshals JSON content from an io.Reader into the provided output structure.
func handlerUnmarshalJSON(reader io.Reader, out any, log logger.Logger, mimeType string) error {
	decoder := json.NewDecoder(reader)
	if err := decoder.Decode(out); err != nil {
		return log.Error("JSON unmarshal error", zap.Error(err))
	}
	log.Debug("Successfully unmarshalled JSON response", zap.String("content_type", mimeType))
	return nil
}

// handlerUnmarshalXML unmarshals XML content from an io.Reader into the provided output structure.
func handlerUnmarshalXML(reader io.Reader, out any, log logger.Logger, mimeType string) error {
	decoder := xml.NewDecoder(reader)
	if err := decoder.Decode(out); err != nil {
		return log.Error("XML unmarshal error", zap.Error(err))
	}
	log.Debug("Successfully unmarshalled XML response", zap.String("content_type", mimeType))
	return nil
}

// isBinaryData checks if the MIME type or Content-Disposition indicates binary data.
func isBinaryData(contentType, contentDisposition string) bool {
	return strings.Contains(contentType, "application/octet-stream") || strings.HasPrefix(contentDisposition, "attachment")
}

// handleBinaryData reads binary data from an io.Reader and stores it in *[]byte or streams it to an io.Writer.
func handleBinaryData(reader io.Reader, out any, log logger.Logger) error {
	switch out := out.(type) {
	case *[]byte:
		data, err := io.ReadAll(reader)
		if err != nil {
			return log.Error("Failed to read binary data", zap.Error(err))
		}
		*out = data
		return nil
	case io.Writer:
		if _, err := io.Copy(out, reader); err != nil {
			return log.Error("Failed to stream binary data", zap.Error(err))
		}
		return nil
	default:
		return fmt.Errorf("output parameter is not a *[]byte or io.Writer for binary data")
	}
}
