package notifier

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// CommandHandler answers one chat command. An empty reply sends nothing.
type CommandHandler func(command string) string

// PollTimeout is the long-poll wait passed to getUpdates.
var PollTimeout = 30 * time.Second

const pollBackoff = 5 * time.Second

// StartPolling long-polls getUpdates and replies to each text message with
// the handler's answer. Blocks until ctx is cancelled.
func (t *TelegramNotifier) StartPolling(ctx context.Context, handler CommandHandler) {
	client := &http.Client{Timeout: PollTimeout + 5*time.Second, Transport: t.httpClient().Transport}
	offset := int64(0)

	for ctx.Err() == nil {
		commands, next, err := t.getUpdates(ctx, client, offset)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			log.Printf("[WARN] telegram getUpdates: %v", err)
			pause(ctx, pollBackoff)
			continue
		}
		offset = next
		for _, cmd := range commands {
			log.Printf("[INFO] received command: %s", cmd)
			reply := handler(cmd)
			if reply == "" {
				continue
			}
			if err := t.Send(ctx, reply); err != nil {
				log.Printf("[ERROR] send reply: %v", err)
			}
		}
	}
	log.Println("[INFO] Telegram polling stopped")
}

// getUpdates fetches pending updates after offset and returns their trimmed
// message texts along with the offset for the next call.
func (t *TelegramNotifier) getUpdates(ctx context.Context, client *http.Client, offset int64) ([]string, int64, error) {
	apiURL := fmt.Sprintf("%s?offset=%d&timeout=%d", t.endpoint("getUpdates"), offset, int(PollTimeout.Seconds()))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, offset, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, offset, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, offset, fmt.Errorf("read body: %w", err)
	}
	if !gjson.ValidBytes(body) || !gjson.GetBytes(body, "ok").Bool() {
		return nil, offset, fmt.Errorf("status %d: %s", resp.StatusCode, body)
	}

	var commands []string
	gjson.GetBytes(body, "result").ForEach(func(_, u gjson.Result) bool {
		if id := u.Get("update_id").Int(); id >= offset {
			offset = id + 1
		}
		if text := strings.TrimSpace(u.Get("message.text").String()); text != "" {
			commands = append(commands, text)
		}
		return true
	})
	return commands, offset, nil
}

func pause(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
