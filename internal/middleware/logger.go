package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/xyz-asif/promptshare/internal/pkg/logger"
)

const RequestIDHeader = "X-Request-ID"

type LoggerConfig struct {
	Logger         *logger.Logger
	LogRequestBody bool
	MaxBodySize    int64 // bytes of request body to capture
	SkipPaths      []string
}

func DefaultLoggerConfig() LoggerConfig {
	return LoggerConfig{
		Logger:         logger.Default(),
		LogRequestBody: true,
		MaxBodySize:    2048,
		SkipPaths:      []string{"/health", "/metrics"},
	}
}

func Logger() gin.HandlerFunc {
	return LoggerWithConfig(DefaultLoggerConfig())
}

// LoggerWithConfig tags every request with an id and logs one line per
// response. JSON request bodies are logged with credential fields masked, so
// ID tokens never reach the log.
func LoggerWithConfig(config LoggerConfig) gin.HandlerFunc {
	if config.Logger == nil {
		config.Logger = logger.Default()
	}
	skip := make(map[string]struct{}, len(config.SkipPaths))
	for _, p := range config.SkipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set("requestID", requestID)
		c.Header(RequestIDHeader, requestID)

		path := c.Request.URL.Path
		if _, ok := skip[path]; ok {
			c.Next()
			return
		}

		start := time.Now()
		method := c.Request.Method

		var requestBody string
		if config.LogRequestBody && c.Request.Body != nil && c.Request.ContentLength > 0 {
			if c.Request.ContentLength > config.MaxBodySize {
				requestBody = "[body too large to log]"
			} else {
				bodyBytes, err := io.ReadAll(io.LimitReader(c.Request.Body, config.MaxBodySize))
				if err == nil {
					c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
					requestBody = sanitizeBody(bodyBytes, c.ContentType())
				}
			}
		}

		c.Next()

		status := c.Writer.Status()
		line := "%s %s %s -> %d in %v (%s)"
		args := []interface{}{requestID, method, path, status, time.Since(start), c.ClientIP()}
		if userID := c.GetString("userID"); userID != "" {
			line += " user=%s"
			args = append(args, userID)
		}
		if requestBody != "" {
			line += " body=%s"
			args = append(args, requestBody)
		}

		switch {
		case status >= 500:
			config.Logger.Error(line, args...)
		case status >= 400:
			config.Logger.Warn(line, args...)
		default:
			config.Logger.Info(line, args...)
		}
	}
}

func sanitizeBody(body []byte, contentType string) string {
	if len(body) == 0 {
		return ""
	}

	if strings.Contains(contentType, "application/json") {
		var jsonData interface{}
		if json.Unmarshal(body, &jsonData) == nil {
			if formatted, err := json.Marshal(hideSensitiveFields(jsonData)); err == nil {
				return truncateString(string(formatted), 200)
			}
		}
		return "[unparseable json]"
	}

	return truncateString(string(body), 200)
}

func hideSensitiveFields(data interface{}) interface{} {
	switch v := data.(type) {
	case map[string]interface{}:
		result := make(map[string]interface{}, len(v))
		for key, value := range v {
			if isSensitiveField(strings.ToLower(key)) {
				result[key] = "********"
			} else {
				result[key] = hideSensitiveFields(value)
			}
		}
		return result
	case []interface{}:
		result := make([]interface{}, len(v))
		for i, item := range v {
			result[i] = hideSensitiveFields(item)
		}
		return result
	default:
		return v
	}
}

func isSensitiveField(field string) bool {
	for _, s := range []string{"password", "token", "secret", "key", "auth", "credential"} {
		if strings.Contains(field, s) {
			return true
		}
	}
	return false
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
