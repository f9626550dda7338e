package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"vinscan/internal/config"
	"vinscan/internal/recognition"
)

const recognitionCheckTimeout = 10 * time.Second

// CheckCredential reports whether a recognition API key is available.
func CheckCredential(cfg *config.Config) Result {
	const name = "Recognition credential"
	if !cfg.RecognitionConfigured() {
		return Result{Name: name, Detail: "missing (set recognition.api_key, VINSCAN_API_KEY or GEMINI_API_KEY); manual entry still works"}
	}
	return Result{Name: name, Passed: true, Detail: "configured (" + maskKey(cfg.Recognition.APIKey) + ")"}
}

// CheckRecognition verifies that the service is reachable and accepts the key.
// It makes a single attempt.
func CheckRecognition(ctx context.Context, cfg *config.Config) Result {
	const name = "Recognition service"
	checkCtx, cancel := context.WithTimeout(ctx, recognitionCheckTimeout)
	defer cancel()

	client := recognition.NewClient(recognition.ConfigFrom(cfg))
	if err := client.HealthCheck(checkCtx); err != nil {
		return Result{Name: name, Detail: summarizeRecognitionError(err)}
	}
	return Result{Name: name, Passed: true, Detail: cfg.Recognition.Model + " reachable"}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckExportDirectory passes when the export directory is writable or does
// not exist yet; it is created on first export.
func CheckExportDirectory(path string) Result {
	const name = "Export directory"
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (created on first export)", path)}
	}
	return CheckDirectoryAccess(name, path)
}

func summarizeRecognitionError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "health check timed out (recognition API unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "health check timed out (recognition API unreachable)"
	}
	var transport *recognition.TransportError
	if errors.As(err, &transport) && (transport.StatusCode == 401 || transport.StatusCode == 403) {
		return "auth failed (invalid api key)"
	}
	return err.Error()
}

func maskKey(key string) string {
	if len(key) <= 4 {
		return "****"
	}
	return "****" + key[len(key)-4:]
}
