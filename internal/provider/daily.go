package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/greenroomhq/greenroom/internal/domain"
)

const (
	DefaultRequestTimeout = 10 * time.Second

	roomsPath  = "/rooms"
	tokensPath = "/meeting-tokens"
)

type DailyConfig struct {
	BaseURL        string
	APIKey         string
	RequestTimeout time.Duration
}

// DailyProvider provisions rooms and meeting tokens against a Daily-style
// REST API. One instance is safe for concurrent use.
type DailyProvider struct {
	cfg    DailyConfig
	client *http.Client
}

func NewDailyProvider(cfg DailyConfig) (*DailyProvider, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("provider base URL is required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("provider API key is required")
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}

	return &DailyProvider{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
	}, nil
}

type roomProperties struct {
	EnableKnocking  bool  `json:"enable_knocking"`
	Exp             int64 `json:"exp"`
	StartAudioOff   bool  `json:"start_audio_off"`
	StartVideoOff   bool  `json:"start_video_off"`
	EnableChat      bool  `json:"enable_chat"`
	EnableNetworkUI bool  `json:"enable_network_ui"`
	MaxParticipants int   `json:"max_participants"`
}

type createRoomBody struct {
	Privacy    string         `json:"privacy"`
	Properties roomProperties `json:"properties"`
}

type createRoomResult struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

func (p *DailyProvider) CreateRoom(ctx context.Context, req CreateRoomRequest) (ProviderRoom, error) {
	body := createRoomBody{
		Privacy: req.Privacy,
		Properties: roomProperties{
			EnableKnocking:  req.Privacy == domain.PrivacyPrivate,
			Exp:             time.Now().Add(req.TTL).Unix(),
			StartAudioOff:   true,
			StartVideoOff:   true,
			EnableChat:      true,
			EnableNetworkUI: true,
			MaxParticipants: req.MaxParticipants,
		},
	}

	var result createRoomResult
	if err := p.post(ctx, roomsPath, body, &result); err != nil {
		return ProviderRoom{}, err
	}

	if result.Name == "" || result.URL == "" {
		return ProviderRoom{}, fmt.Errorf("%w: provider returned no room", domain.ErrUpstreamUnavailable)
	}

	return ProviderRoom{ID: result.Name, JoinURL: result.URL}, nil
}

type tokenProperties struct {
	RoomName string `json:"room_name"`
	IsOwner  bool   `json:"is_owner"`
	Exp      int64  `json:"exp"`
	UserName string `json:"user_name,omitempty"`
}

type createTokenBody struct {
	Properties tokenProperties `json:"properties"`
}

type createTokenResult struct {
	Token string `json:"token"`
}

func (p *DailyProvider) IssueCredential(ctx context.Context, req CredentialRequest) (string, error) {
	body := createTokenBody{
		Properties: tokenProperties{
			RoomName: req.RoomID,
			IsOwner:  req.Owner,
			Exp:      time.Now().Add(req.TTL).Unix(),
			UserName: req.DisplayName,
		},
	}

	var result createTokenResult
	if err := p.post(ctx, tokensPath, body, &result); err != nil {
		return "", err
	}

	if result.Token == "" {
		return "", fmt.Errorf("%w: provider returned no token", domain.ErrUpstreamUnavailable)
	}

	return result.Token, nil
}

// ApproveKnocking grants entry to a participant already knocking on the
// provider-side room.
func (p *DailyProvider) ApproveKnocking(ctx context.Context, roomID, participantRef string) error {
	path := fmt.Sprintf("%s/%s/update-permissions", roomsPath, roomID)

	body := map[string]any{
		"data": map[string]any{
			participantRef: map[string]any{
				"canAdmit":    false,
				"hasPresence": true,
			},
		},
	}

	return p.post(ctx, path, body, nil)
}

func (p *DailyProvider) post(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)

	resp, err := p.client.Do(req)
	if err != nil {
		// Timeouts and transport errors all collapse to the same retryable
		// kind; the raw cause stays out of caller-visible responses.
		return fmt.Errorf("%w: %s", domain.ErrUpstreamUnavailable, path)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("%w: %s returned %d", domain.ErrUpstreamUnavailable, path, resp.StatusCode)
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: malformed provider response", domain.ErrUpstreamUnavailable)
	}

	return nil
}
