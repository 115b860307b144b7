package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/halvard/skald/internal/models"
)

const userInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// UserUpserter persists editor identities on login.
type UserUpserter interface {
	Upsert(u models.User) (*models.User, error)
}

// OAuth exchanges authorization codes for verified profiles and upserts a
// user record per successful login. The provider contract with the rest of
// the system is exactly that: code in, user out.
type OAuth struct {
	users UserUpserter
	cfg   *oauth2.Config
}

// NewOAuth creates the Google OAuth flow.
func NewOAuth(users UserUpserter, clientID, clientSecret, redirectURL string) *OAuth {
	return &OAuth{
		users: users,
		cfg: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       []string{"openid", "profile", "email"},
			RedirectURL:  redirectURL,
		},
	}
}

// AuthCodeURL returns the provider consent URL for the given CSRF state.
func (o *OAuth) AuthCodeURL(state string) string {
	return o.cfg.AuthCodeURL(state)
}

// HandleCallback exchanges the authorization code, fetches the verified
// profile, and upserts the user record.
func (o *OAuth) HandleCallback(ctx context.Context, code string) (*models.User, error) {
	token, err := o.cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("auth: token exchange: %w", err)
	}

	info, err := fetchUserInfo(ctx, token.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("auth: fetch profile: %w", err)
	}

	user, err := o.users.Upsert(models.User{
		ID:        info.ID,
		Email:     info.Email,
		FirstName: info.GivenName,
		LastName:  info.FamilyName,
		ImageURL:  info.Picture,
	})
	if err != nil {
		return nil, fmt.Errorf("auth: upsert user: %w", err)
	}
	return user, nil
}

type userInfo struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
	Picture    string `json:"picture"`
}

func fetchUserInfo(ctx context.Context, accessToken string) (*userInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("user info endpoint returned status %d", resp.StatusCode)
	}

	var info userInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decode user info: %w", err)
	}
	return &info, nil
}
