package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/plateful/plateful/internal/model"
)

// GetProfile fetches the authenticated user's profile. A 404 means the
// account exists upstream but has not been provisioned backend-side yet;
// callers detect that with IsNotFound.
func (c *Client) GetProfile(ctx context.Context) (*model.Profile, error) {
	var out model.Profile
	if err := c.doJSON(ctx, http.MethodGet, "auth/profile", nil, &out); err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &out, nil
}

// ProfileForm carries the text fields plus an optional image for the
// multipart registration and profile-update endpoints.
type ProfileForm struct {
	Email    string
	UserName string
	FullName string
	Bio      string

	// Optional image upload. ImageName is the client-side filename.
	Image     io.Reader
	ImageName string
}

// fields returns the non-empty text fields in submission order.
func (f ProfileForm) fields() [][2]string {
	all := [][2]string{
		{"email", f.Email},
		{"userName", f.UserName},
		{"fullName", f.FullName},
		{"bio", f.Bio},
	}
	out := all[:0]
	for _, kv := range all {
		if kv[1] != "" {
			out = append(out, kv)
		}
	}
	return out
}

// Register creates the backend account via multipart form data and returns
// the server's profile. Server-side normalization (recomputed flags, image
// URL) is authoritative, so callers must adopt the returned profile rather
// than their own input.
func (c *Client) Register(ctx context.Context, form ProfileForm) (*model.Profile, error) {
	return c.submitProfileForm(ctx, http.MethodPost, "auth/register", form)
}

// UpdateProfile submits profile edits via multipart form data and returns the
// server's updated profile.
func (c *Client) UpdateProfile(ctx context.Context, form ProfileForm) (*model.Profile, error) {
	return c.submitProfileForm(ctx, http.MethodPut, "auth/update-profile", form)
}

func (c *Client) submitProfileForm(ctx context.Context, method, path string, form ProfileForm) (*model.Profile, error) {
	body, contentType, err := encodeProfileForm(form)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	raw, err := c.request(ctx, method, path, contentType, body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	var out model.Profile
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%s: decoding profile: %w", path, err)
	}
	return &out, nil
}

// encodeProfileForm builds the multipart body up front so request retries can
// replay it.
func encodeProfileForm(form ProfileForm) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, kv := range form.fields() {
		if err := w.WriteField(kv[0], kv[1]); err != nil {
			return nil, "", fmt.Errorf("encoding field %s: %w", kv[0], err)
		}
	}
	if form.Image != nil {
		name := form.ImageName
		if name == "" {
			name = "profile.jpg"
		}
		fw, err := w.CreateFormFile("profileImage", name)
		if err != nil {
			return nil, "", fmt.Errorf("encoding image part: %w", err)
		}
		if _, err := io.Copy(fw, form.Image); err != nil {
			return nil, "", fmt.Errorf("reading image: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

// CheckUsername asks the backend whether a username is still available.
func (c *Client) CheckUsername(ctx context.Context, userName string) (bool, error) {
	in := map[string]string{"userName": userName}
	var out struct {
		Available bool `json:"available"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "auth/check-username", in, &out); err != nil {
		return false, fmt.Errorf("check username: %w", err)
	}
	return out.Available, nil
}

// DeleteAccount removes the authenticated account.
func (c *Client) DeleteAccount(ctx context.Context) error {
	if err := c.doJSON(ctx, http.MethodDelete, "auth/account", nil, nil); err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	return nil
}
