package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	// Whisper endpoint on DeepInfra.
	apiURL = "https://api.deepinfra.com/v1/inference/openai/whisper-large-v3"

	// Long recordings take a while to process.
	defaultTimeout = 120 * time.Second

	defaultContentType = "audio/webm"
)

var contentTypes = map[string]string{
	".wav":  "audio/wav",
	".mp3":  "audio/mpeg",
	".m4a":  "audio/mp4",
	".webm": "audio/webm",
	".ogg":  "audio/ogg",
}

// Client turns recorded candidate answers into text via the DeepInfra
// Whisper API.
type Client struct {
	token  string
	logger *zap.Logger

	HTTPClient *http.Client
	APIURL     string
}

// New creates a transcription client with the given API token.
func New(token string, logger *zap.Logger) (*Client, error) {
	if strings.TrimSpace(token) == "" {
		return nil, errors.New("transcription api token is required")
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		token:  token,
		logger: logger,
		HTTPClient: &http.Client{
			Timeout: defaultTimeout,
		},
		APIURL: apiURL,
	}, nil
}

type inferenceResponse struct {
	Text string `json:"text"`
}

// Transcribe uploads the audio and returns the recognized text. An empty
// transcription is not an error: silence is a valid recording.
func (c *Client) Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	if filename = strings.TrimSpace(filename); filename == "" {
		filename = "audio.webm"
	}

	part, err := writer.CreatePart(partHeader(filename))
	if err != nil {
		return "", fmt.Errorf("create form part: %w", err)
	}

	if _, err := io.Copy(part, audio); err != nil {
		return "", fmt.Errorf("copy audio payload: %w", err)
	}

	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("finalize form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.APIURL, &body)
	if err != nil {
		return "", fmt.Errorf("build transcription request: %w", err)
	}

	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.token))
	req.Header.Set("Content-Type", writer.FormDataContentType())

	c.logger.Debug("transcription request",
		zap.String("filename", filename),
		zap.String("url", c.APIURL),
	)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("transcription request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("transcription service: bad status %s: %s", resp.Status, strings.TrimSpace(string(detail)))
	}

	var result inferenceResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode transcription response: %w", err)
	}

	text := strings.TrimSpace(result.Text)

	c.logger.Debug("transcription response", zap.Int("length", len(text)))

	return text, nil
}

func partHeader(filename string) textproto.MIMEHeader {
	contentType := defaultContentType
	if ct, ok := contentTypes[strings.ToLower(filepath.Ext(filename))]; ok {
		contentType = ct
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="audio"; filename=%q`, filename))
	header.Set("Content-Type", contentType)

	return header
}
