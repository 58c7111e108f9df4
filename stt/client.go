// Package stt talks to the speech-to-text collaborator service over
// HTTP. Transcription itself runs there; this side only uploads the
// audio and shapes the result.
package stt

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/ravin00/VoiceMart-Shopping-Assistant/resilience"
	"github.com/ravin00/VoiceMart-Shopping-Assistant/types"
)

// allowedMIMETypes is the audio upload allow-list, shared with the API
// layer.
var allowedMIMETypes = map[string]bool{
	"audio/wav": true, "audio/x-wav": true,
	"audio/mpeg": true, "audio/mp3": true,
	"audio/mp4": true, "audio/aac": true,
	"audio/x-m4a": true, "audio/m4a": true,
	"audio/ogg": true, "audio/webm": true,
}

// IsAllowedMIME reports whether the upload content type is an audio
// format the transcriber accepts. Parameters after a semicolon are
// ignored.
func IsAllowedMIME(mime string) bool {
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = mime[:i]
	}
	return allowedMIMETypes[strings.ToLower(strings.TrimSpace(mime))]
}

// Client uploads audio to the transcription service.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	breaker *resilience.CircuitBreaker
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: 60 * time.Second},
		breaker: resilience.NewCircuitBreaker(5, 30*time.Second),
	}
}

// Transcribe uploads one audio file and returns the transcript. The
// filename is advisory; the collaborator sniffs the container format.
func (c *Client) Transcribe(ctx context.Context, filename, contentType string, audio io.Reader) (*types.TranscriptionResult, error) {
	data, err := io.ReadAll(audio)
	if err != nil {
		return nil, err
	}

	var result *types.TranscriptionResult
	err = c.breaker.Execute(func() error {
		r, callErr := c.doTranscribe(ctx, filename, contentType, data)
		if callErr != nil {
			return callErr
		}
		result = r
		return nil
	})
	return result, err
}

func (c *Client) doTranscribe(ctx context.Context, filename, contentType string, audio []byte) (*types.TranscriptionResult, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	hdr.Set("Content-Type", contentType)
	part, err := mw.CreatePart(hdr)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(audio); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/stt:transcribe", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &resilience.StatusError{Status: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}

	var out types.TranscriptionResult
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}
