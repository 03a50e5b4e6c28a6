package utils

import (
	"fmt"
	"log"
	"strings"
)

// LogEvent prints standardized log line with module/action/request_id.
// Keep message summarized: no passwords, tokens or full payloads.
func LogEvent(requestID, module, action, message string, kv ...any) {
	log.Printf("[%s] action=%s request_id=%s msg=%s%s",
		strings.ToUpper(module), action, strings.TrimSpace(requestID), message, formatKV(kv))
}

// LogError is LogEvent with an error attached.
func LogError(requestID, module, action string, err error, kv ...any) {
	log.Printf("[%s] action=%s request_id=%s error=%q%s",
		strings.ToUpper(module), action, strings.TrimSpace(requestID), errString(err), formatKV(kv))
}

func formatKV(kv []any) string {
	if len(kv) == 0 {
		return ""
	}
	var b strings.Builder
	for i := 0; i < len(kv); i += 2 {
		key := fmt.Sprint(kv[i])
		val := any("(missing)")
		if i+1 < len(kv) {
			val = kv[i+1]
		}
		fmt.Fprintf(&b, " %s=%v", key, val)
	}
	return b.String()
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
