// Package notify delivers rendered quotes to the sales channel.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"

	"github.com/cartonq/cartonq-backend/internal/quote"
	"github.com/cartonq/cartonq-backend/pkg/config"
)

const defaultTelegramAPI = "https://api.telegram.org"

// TelegramNotifier sends the rendered PDF to the manager chat through the
// Bot API sendDocument call.
type TelegramNotifier struct {
	httpClient *http.Client
	baseURL    string
	botToken   string
	chatID     string
}

func NewTelegramNotifier(cfg config.TelegramConfig) (*TelegramNotifier, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("telegram bot token and chat id are required")
	}
	return &TelegramNotifier{
		httpClient: http.DefaultClient,
		baseURL:    defaultTelegramAPI,
		botToken:   cfg.BotToken,
		chatID:     cfg.ManagerChatID,
	}, nil
}

func (n *TelegramNotifier) Send(ctx context.Context, artifact quote.Artifact, caption, leadID string) error {
	file, err := os.Open(artifact.Path)
	if err != nil {
		return fmt.Errorf("opening artifact: %w", err)
	}
	defer file.Close()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	if err := writer.WriteField("chat_id", n.chatID); err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	if err := writer.WriteField("caption", caption); err != nil {
		return fmt.Errorf("building request: %w", err)
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="document"; filename="%s"`, filepath.Base(artifact.Path)))
	header.Set("Content-Type", "application/pdf")
	part, err := writer.CreatePart(header)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("reading artifact: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("building request: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendDocument", n.baseURL, n.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram api returned status %d", resp.StatusCode)
	}

	var apiResp struct {
		OK          bool   `json:"ok"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return fmt.Errorf("decoding telegram response: %w", err)
	}
	if !apiResp.OK {
		return fmt.Errorf("telegram api rejected document: %s", apiResp.Description)
	}
	return nil
}
