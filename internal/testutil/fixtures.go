package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/dom/musikkhylla/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserBuilder creates test users with a builder pattern
type UserBuilder struct {
	email string
}

// NewUserBuilder creates a new UserBuilder with a unique email
func NewUserBuilder() *UserBuilder {
	return &UserBuilder{
		email: fmt.Sprintf("user_%s@example.com", uuid.New().String()[:8]),
	}
}

// WithEmail sets the email
func (b *UserBuilder) WithEmail(email string) *UserBuilder {
	b.email = email
	return b
}

// Build creates the user in the database
func (b *UserBuilder) Build(t *testing.T, db *gorm.DB) *domain.User {
	t.Helper()

	user := &domain.User{
		ID:        uuid.New(),
		Email:     domain.NormalizeEmail(b.email),
		CreatedAt: time.Now().UTC(),
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user
}

// AuthResponse matches the verify-code response
type AuthResponse struct {
	Token string `json:"token"`
	User  struct {
		ID        string     `json:"id"`
		Email     string     `json:"email"`
		CreatedAt time.Time  `json:"created_at"`
		LastLogin *time.Time `json:"last_login"`
	} `json:"user"`
}

// ErrorResponse matches the API error body
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// BuildAndAuthenticate signs the user in through the API and returns the
// user and session token
func (b *UserBuilder) BuildAndAuthenticate(t *testing.T, ts *TestServer) (*domain.User, string) {
	t.Helper()

	resp := PostJSON(t, ts.APIURL("/auth/request-code"), "", map[string]string{"email": b.email})
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("request-code: unexpected status code: %d", resp.StatusCode)
	}

	code := ts.Notifier.LastCode(b.email)
	if code == "" {
		t.Fatalf("no login code captured for %s", b.email)
	}

	resp = PostJSON(t, ts.APIURL("/auth/verify-code"), "", map[string]string{"email": b.email, "code": code})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("verify-code: unexpected status code: %d", resp.StatusCode)
	}

	var authResp AuthResponse
	if err := json.NewDecoder(resp.Body).Decode(&authResp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	userID, _ := uuid.Parse(authResp.User.ID)
	user := &domain.User{
		ID:        userID,
		Email:     authResp.User.Email,
		CreatedAt: authResp.User.CreatedAt,
		LastLogin: authResp.User.LastLogin,
	}

	return user, authResp.Token
}

// AlbumBuilder creates test albums with a builder pattern
type AlbumBuilder struct {
	owner    *domain.User
	title    string
	artist   string
	year     *int
	position int
}

// NewAlbumBuilder creates a new AlbumBuilder with default values
func NewAlbumBuilder() *AlbumBuilder {
	return &AlbumBuilder{
		title:  "Test Album",
		artist: "Test Artist",
	}
}

// ForUser sets the owner
func (b *AlbumBuilder) ForUser(user *domain.User) *AlbumBuilder {
	b.owner = user
	return b
}

// WithTitle sets the title
func (b *AlbumBuilder) WithTitle(title string) *AlbumBuilder {
	b.title = title
	return b
}

// WithArtist sets the artist
func (b *AlbumBuilder) WithArtist(artist string) *AlbumBuilder {
	b.artist = artist
	return b
}

// WithYear sets the release year
func (b *AlbumBuilder) WithYear(year int) *AlbumBuilder {
	b.year = &year
	return b
}

// AtPosition sets the position
func (b *AlbumBuilder) AtPosition(position int) *AlbumBuilder {
	b.position = position
	return b
}

// Build creates the album in the database, creating an owner if none was set
func (b *AlbumBuilder) Build(t *testing.T, db *gorm.DB) *domain.Album {
	t.Helper()

	if b.owner == nil {
		b.owner = NewUserBuilder().Build(t, db)
	}

	album := &domain.Album{
		ID:        uuid.New(),
		UserID:    b.owner.ID,
		Title:     b.title,
		Artist:    b.artist,
		Year:      b.year,
		Position:  b.position,
		CreatedAt: time.Now().UTC(),
	}

	if err := db.Create(album).Error; err != nil {
		t.Fatalf("failed to create album: %v", err)
	}

	return album
}

// LoginCodeBuilder creates login codes directly in the database
type LoginCodeBuilder struct {
	owner     *domain.User
	code      string
	createdAt time.Time
	ttl       time.Duration
	used      bool
}

// NewLoginCodeBuilder creates a fresh, unused code valid for ten minutes
func NewLoginCodeBuilder() *LoginCodeBuilder {
	return &LoginCodeBuilder{
		code:      "123456",
		createdAt: time.Now().UTC().Truncate(time.Second),
		ttl:       10 * time.Minute,
	}
}

// ForUser sets the owner
func (b *LoginCodeBuilder) ForUser(user *domain.User) *LoginCodeBuilder {
	b.owner = user
	return b
}

// WithCode sets the code digits
func (b *LoginCodeBuilder) WithCode(code string) *LoginCodeBuilder {
	b.code = code
	return b
}

// CreatedAt sets the creation time; expiry follows from the TTL
func (b *LoginCodeBuilder) CreatedAt(at time.Time) *LoginCodeBuilder {
	b.createdAt = at
	return b
}

// Used marks the code as consumed
func (b *LoginCodeBuilder) Used() *LoginCodeBuilder {
	b.used = true
	return b
}

// Build creates the code in the database, creating an owner if none was set
func (b *LoginCodeBuilder) Build(t *testing.T, db *gorm.DB) *domain.LoginCode {
	t.Helper()

	if b.owner == nil {
		b.owner = NewUserBuilder().Build(t, db)
	}

	code := domain.NewLoginCode(b.owner.ID, b.code, b.createdAt, b.ttl)
	code.Used = b.used

	if err := db.Create(code).Error; err != nil {
		t.Fatalf("failed to create login code: %v", err)
	}

	return code
}

// PostJSON sends body as JSON with an optional bearer token
func PostJSON(t *testing.T, url, token string, body interface{}) *http.Response {
	t.Helper()
	return DoJSON(t, http.MethodPost, url, token, body)
}

// DoJSON sends a request with an optional JSON body and bearer token
func DoJSON(t *testing.T, method, url, token string, body interface{}) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}
