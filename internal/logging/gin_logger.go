package logging

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"runtime/debug"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// authFlowPrefixes defines path prefixes for authentication flow requests that
// should have request ID tracking.
var authFlowPrefixes = []string{
	"/auth/",
}

// sensitiveQueryParams lists query parameters whose values must never reach
// the logs verbatim. The callback URL carries authorization codes, CSRF state,
// and session tokens as query parameters.
var sensitiveQueryParams = map[string]struct{}{
	"code":         {},
	"state":        {},
	"token":        {},
	"access_token": {},
}

// GinLogrusLogger returns a Gin middleware handler that logs HTTP requests and
// responses using logrus. It captures request details including method, path,
// status code, latency, client IP, and any error messages. Request ID is only
// added for authentication flow requests.
//
// Output format: [2025-12-23 20:14:10] [a1b2c3d4] [info ] 302 |       1.201s | ...
func GinLogrusLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := MaskSensitiveQuery(c.Request.URL.RawQuery)

		// Only generate request ID for auth flow paths
		var requestID string
		if isAuthFlowPath(path) {
			requestID = GenerateRequestID()
			SetGinRequestID(c, requestID)
			ctx := WithRequestID(c.Request.Context(), requestID)
			c.Request = c.Request.WithContext(ctx)
		}

		c.Next()

		if raw != "" {
			path = path + "?" + raw
		}

		latency := time.Since(start)
		if latency > time.Minute {
			latency = latency.Truncate(time.Second)
		} else {
			latency = latency.Truncate(time.Millisecond)
		}

		statusCode := c.Writer.Status()
		clientIP := c.ClientIP()
		method := c.Request.Method
		errorMessage := c.Errors.ByType(gin.ErrorTypePrivate).String()

		if requestID == "" {
			requestID = "--------"
		}
		logLine := fmt.Sprintf("%3d | %13v | %15s | %-7s %q", statusCode, latency, clientIP, method, path)
		if errorMessage != "" {
			logLine = logLine + " | " + errorMessage
		}

		entry := log.WithField("request_id", requestID)

		switch {
		case statusCode >= http.StatusInternalServerError:
			entry.Error(logLine)
		case statusCode >= http.StatusBadRequest:
			entry.Warn(logLine)
		default:
			entry.Info(logLine)
		}
	}
}

// isAuthFlowPath checks if the given path is an authentication endpoint that
// should have request ID tracking.
func isAuthFlowPath(path string) bool {
	for _, prefix := range authFlowPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// MaskSensitiveQuery replaces the values of sensitive query parameters with a
// short masked form so raw credentials never land in log files.
func MaskSensitiveQuery(raw string) string {
	if raw == "" {
		return ""
	}
	parts := strings.Split(raw, "&")
	for i, part := range parts {
		if part == "" {
			continue
		}
		keyPart := part
		valuePart := ""
		if idx := strings.Index(part, "="); idx >= 0 {
			keyPart = part[:idx]
			valuePart = part[idx+1:]
		}
		decodedKey, err := url.QueryUnescape(keyPart)
		if err != nil {
			decodedKey = keyPart
		}
		if _, sensitive := sensitiveQueryParams[decodedKey]; !sensitive {
			continue
		}
		decodedValue, err := url.QueryUnescape(valuePart)
		if err != nil {
			decodedValue = valuePart
		}
		parts[i] = keyPart + "=" + url.QueryEscape(MaskSecret(strings.TrimSpace(decodedValue)))
	}
	return strings.Join(parts, "&")
}

// MaskSecret renders a secret as its first four characters followed by an
// ellipsis. Values too short to safely truncate become "***".
func MaskSecret(value string) string {
	if len(value) <= 8 {
		return "***"
	}
	return value[:4] + "..."
}

// GinLogrusRecovery returns a Gin middleware handler that recovers from panics
// and logs them using logrus. When a panic occurs, it captures the panic value,
// stack trace, and request path, then returns a 500 Internal Server Error
// response to the client.
func GinLogrusRecovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		if err, ok := recovered.(error); ok && errors.Is(err, http.ErrAbortHandler) {
			// Let net/http handle ErrAbortHandler so the connection is aborted without noisy stack logs.
			panic(http.ErrAbortHandler)
		}

		log.WithFields(log.Fields{
			"panic": recovered,
			"stack": string(debug.Stack()),
			"path":  c.Request.URL.Path,
		}).Error("recovered from panic")

		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "internal_error",
			"message": "Unknown error",
		})
	})
}
