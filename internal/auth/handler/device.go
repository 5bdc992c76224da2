package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	sessiondomain "github.com/capstone-pvt/api/internal/session/domain"
)

// ExtractDeviceInfo builds the device fingerprint recorded on the session:
// raw user agent, client IP, and coarse browser/OS labels. X-Forwarded-For
// (first hop) wins over X-Real-Ip, then the connection address.
func ExtractDeviceInfo(c *gin.Context) sessiondomain.DeviceInfo {
	ua := c.Request.UserAgent()
	if ua == "" {
		ua = "unknown"
	}
	return sessiondomain.DeviceInfo{
		UserAgent: ua,
		IP:        clientIP(c),
		Browser:   detectBrowser(ua),
		OS:        detectOS(ua),
	}
}

func clientIP(c *gin.Context) string {
	if xff := c.GetHeader("X-Forwarded-For"); xff != "" {
		return strings.TrimSpace(strings.Split(xff, ",")[0])
	}
	if real := c.GetHeader("X-Real-Ip"); real != "" {
		return real
	}
	if ip := c.ClientIP(); ip != "" {
		return ip
	}
	return "unknown"
}

// Coarse substring matching only. Chromium-based Edge reports Chrome, which
// is acceptable for session display purposes.
func detectBrowser(ua string) string {
	switch {
	case strings.Contains(ua, "Chrome"):
		return "Chrome"
	case strings.Contains(ua, "Firefox"):
		return "Firefox"
	case strings.Contains(ua, "Safari"):
		return "Safari"
	case strings.Contains(ua, "Edge"):
		return "Edge"
	default:
		return "unknown"
	}
}

func detectOS(ua string) string {
	switch {
	case strings.Contains(ua, "Windows"):
		return "Windows"
	case strings.Contains(ua, "Mac"):
		return "macOS"
	case strings.Contains(ua, "Linux"):
		return "Linux"
	case strings.Contains(ua, "Android"):
		return "Android"
	case strings.Contains(ua, "iOS"):
		return "iOS"
	default:
		return "unknown"
	}
}
