package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"automv/internal/config"
)

const userAgent = "automv/0.1.0"

// Service is the notification surface used by the orchestrator and CLI.
type Service interface {
	NotifyRunCompleted(ctx context.Context, project, videoPath string, elapsed time.Duration) error
	NotifyRunFailed(ctx context.Context, project, status string, err error) error
	TestNotification(ctx context.Context) error
}

// NewService builds an ntfy-backed service, or a no-op one when no topic is
// configured.
func NewService(cfg *config.Config) Service {
	if cfg == nil {
		return noopService{}
	}
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}
	timeout := cfg.NotificationTimeout()
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) NotifyRunCompleted(ctx context.Context, project, videoPath string, elapsed time.Duration) error {
	message := fmt.Sprintf("🎬 %s finished in %s", strings.TrimSpace(project), formatElapsed(elapsed))
	if videoPath = strings.TrimSpace(videoPath); videoPath != "" {
		message += "\nVideo: " + videoPath
	} else {
		message += "\nNo final video was found; check the transcript."
	}
	return n.send(ctx, payload{
		title:    "AutoMV - Video Ready",
		message:  message,
		tags:     []string{"automv", "run", "completed"},
		priority: "high",
	})
}

func (n *ntfyService) NotifyRunFailed(ctx context.Context, project, status string, err error) error {
	var b strings.Builder
	b.WriteString("❌ ")
	if project = strings.TrimSpace(project); project != "" {
		b.WriteString(project + ": ")
	}
	b.WriteString(strings.ReplaceAll(strings.TrimSpace(status), "_", " "))
	if err != nil {
		b.WriteString("\n")
		b.WriteString(strings.TrimSpace(err.Error()))
	}
	return n.send(ctx, payload{
		title:    "AutoMV - Run Failed",
		message:  b.String(),
		tags:     []string{"automv", "run", "failed"},
		priority: "high",
	})
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	return n.send(ctx, payload{
		title:    "AutoMV - Test",
		message:  "🧪 Notification system test",
		tags:     []string{"automv", "test"},
		priority: "low",
	})
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func formatElapsed(d time.Duration) string {
	d = d.Round(time.Second)
	if d <= 0 {
		return "0s"
	}
	return d.String()
}

type noopService struct{}

func (noopService) NotifyRunCompleted(context.Context, string, string, time.Duration) error { return nil }
func (noopService) NotifyRunFailed(context.Context, string, string, error) error            { return nil }
func (noopService) TestNotification(context.Context) error                                  { return nil }
