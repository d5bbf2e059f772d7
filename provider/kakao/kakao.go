package kakao

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-errors"
	auth "github.com/nonggle/go-auth"
)

const defaultUserInfoURL = "https://kapi.kakao.com/v2/user/me"

// Config holds the Kakao gateway configuration.
type Config struct {
	UserInfoURL string

	HTTPClient *http.Client
}

// Client resolves Kakao access tokens into remote identities. It implements
// auth.IdentityResolver.
type Client struct {
	config     Config
	httpClient *http.Client
}

// New creates a new Kakao client.
func New(cfg Config) *Client {
	if cfg.UserInfoURL == "" {
		cfg.UserInfoURL = defaultUserInfoURL
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	return &Client{
		config:     cfg,
		httpClient: client,
	}
}

// Name identifies the provider.
func (c *Client) Name() string {
	return "kakao"
}

// Resolve exchanges a provider issued access token for the identity it
// belongs to. Failures are normalized into the provider error classes so
// callers never branch on transport details.
func (c *Client) Resolve(ctx context.Context, providerCredential string) (*auth.RemoteIdentity, error) {
	if strings.TrimSpace(providerCredential) == "" {
		return nil, wrapProviderError(ErrProviderBadInput, "user_info", nil)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.UserInfoURL, nil)
	if err != nil {
		return nil, wrapProviderError(ErrProviderUnknown, "user_info", err)
	}
	req.Header.Set("Authorization", "Bearer "+providerCredential)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, wrapProviderError(ErrProviderUnavailable, "user_info", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, wrapProviderError(ErrProviderUnavailable, "user_info", err)
	}

	if resp.StatusCode != http.StatusOK {
		code, description, raw := parseKakaoError(body)
		perr := &ProviderError{
			Operation:   "user_info",
			Status:      resp.StatusCode,
			Code:        code,
			Description: description,
			Raw:         raw,
		}
		return nil, wrapProviderError(classifyStatus(resp.StatusCode), "user_info", perr)
	}

	var userInfo kakaoUserInfo
	if err := json.Unmarshal(body, &userInfo); err != nil {
		perr := &ProviderError{
			Operation:   "user_info",
			Status:      resp.StatusCode,
			Code:        "invalid_response",
			Description: "failed to decode userinfo response",
			Err:         err,
		}
		return nil, wrapProviderError(ErrProviderMalformed, "user_info", perr)
	}

	if userInfo.ID == 0 {
		perr := &ProviderError{
			Operation:   "user_info",
			Status:      resp.StatusCode,
			Code:        "missing_id",
			Description: "userinfo response carries no id",
		}
		return nil, wrapProviderError(ErrProviderMalformed, "user_info", perr)
	}

	return mapIdentity(&userInfo), nil
}

func classifyStatus(status int) *errors.Error {
	switch {
	case status == http.StatusUnauthorized:
		return ErrProviderUnauthorized
	case status == http.StatusForbidden:
		return ErrProviderForbidden
	case status >= http.StatusInternalServerError:
		return ErrProviderUnavailable
	default:
		return ErrProviderUnknown
	}
}

func mapIdentity(info *kakaoUserInfo) *auth.RemoteIdentity {
	nickname := info.Properties.Nickname
	if nickname == "" {
		nickname = info.KakaoAccount.Profile.Nickname
	}

	return &auth.RemoteIdentity{
		ID:       strconv.FormatInt(info.ID, 10),
		Nickname: nickname,
	}
}

type kakaoUserInfo struct {
	ID         int64 `json:"id"`
	Properties struct {
		Nickname string `json:"nickname"`
	} `json:"properties"`
	KakaoAccount struct {
		Profile struct {
			Nickname string `json:"nickname"`
		} `json:"profile"`
	} `json:"kakao_account"`
}

type kakaoErrorResponse struct {
	Msg  string `json:"msg"`
	Code int    `json:"code"`
}

func parseKakaoError(body []byte) (string, string, map[string]any) {
	var plain kakaoErrorResponse
	if err := json.Unmarshal(body, &plain); err == nil && (plain.Msg != "" || plain.Code != 0) {
		return fmt.Sprintf("%d", plain.Code), plain.Msg, map[string]any{
			"msg":  plain.Msg,
			"code": plain.Code,
		}
	}

	msg := strings.TrimSpace(string(body))
	if msg == "" {
		msg = "kakao request failed"
	}

	return "", msg, nil
}
