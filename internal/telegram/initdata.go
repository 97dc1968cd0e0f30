package telegram

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/url"
	"strconv"
	"strings"
	"time"
)

var (
	ErrMalformedPayload = errors.New("malformed init data")
	ErrMissingSignature = errors.New("init data is not signed")
	ErrInvalidSignature = errors.New("invalid init data signature")
	ErrMissingIdentity  = errors.New("init data has no user id")
)

const webAppDataKey = "WebAppData"

type User struct {
	ID           int64  `json:"id"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name,omitempty"`
	Username     string `json:"username,omitempty"`
	LanguageCode string `json:"language_code,omitempty"`
	IsPremium    bool   `json:"is_premium,omitempty"`
}

// InitData is the verified content of a Mini-App launch payload.
type InitData struct {
	ExternalID string
	FirstName  string
	LastName   string
	Username   string
	QueryID    string
	AuthDate   time.Time
	Hash       string
	User       *User
	Raw        url.Values
}

// DisplayName joins first and last name the way accounts store it.
func (d *InitData) DisplayName() string {
	return strings.TrimSpace(d.FirstName + " " + d.LastName)
}

// Handle returns the Telegram username with any leading "@" removed.
func (d *InitData) Handle() string {
	return strings.TrimPrefix(d.Username, "@")
}

type Verifier struct {
	secret []byte
}

// NewVerifier returns a verifier for init data signed with botToken. An empty
// token disables signature checks.
func NewVerifier(botToken string) *Verifier {
	v := &Verifier{}
	if botToken != "" {
		v.secret = deriveSecret(botToken)
	}
	return v
}

func (v *Verifier) Enabled() bool {
	return v.secret != nil
}

func (v *Verifier) Verify(raw string) (*InitData, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, ErrMalformedPayload
	}

	values, err := url.ParseQuery(raw)
	if err != nil {
		return nil, ErrMalformedPayload
	}

	hash := values.Get("hash")
	if v.Enabled() {
		if hash == "" {
			return nil, ErrMissingSignature
		}
		expected := computeHash(v.secret, checkString(raw))
		if !hmac.Equal([]byte(expected), []byte(strings.ToLower(hash))) {
			return nil, ErrInvalidSignature
		}
	}

	data, err := parse(values)
	if err != nil {
		return nil, err
	}
	data.Hash = hash

	if data.ExternalID == "" || data.ExternalID == "0" {
		return nil, ErrMissingIdentity
	}
	return data, nil
}

// Sign encodes values and appends a valid hash for botToken.
func Sign(values url.Values, botToken string) string {
	encoded := values.Encode()
	return encoded + "&hash=" + computeHash(deriveSecret(botToken), encoded)
}

// checkString drops the hash pair from raw, keeping every other pair in
// its received order and encoding.
func checkString(raw string) string {
	pairs := strings.Split(raw, "&")
	kept := pairs[:0:0]
	for _, pair := range pairs {
		key, _, _ := strings.Cut(pair, "=")
		if k, err := url.QueryUnescape(key); err == nil && k == "hash" {
			continue
		}
		kept = append(kept, pair)
	}
	return strings.Join(kept, "&")
}

func deriveSecret(botToken string) []byte {
	mac := hmac.New(sha256.New, []byte(webAppDataKey))
	mac.Write([]byte(botToken))
	return mac.Sum(nil)
}

func computeHash(secret []byte, data string) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(data))
	return hex.EncodeToString(mac.Sum(nil))
}

// userFields mirrors User with pointers so only keys present in the JSON
// override the top-level fields.
type userFields struct {
	ID           *json.Number `json:"id"`
	FirstName    *string      `json:"first_name"`
	LastName     *string      `json:"last_name"`
	Username     *string      `json:"username"`
	LanguageCode *string      `json:"language_code"`
	IsPremium    *bool        `json:"is_premium"`
}

func parse(values url.Values) (*InitData, error) {
	data := &InitData{
		ExternalID: values.Get("id"),
		FirstName:  values.Get("first_name"),
		LastName:   values.Get("last_name"),
		Username:   values.Get("username"),
		QueryID:    values.Get("query_id"),
		Raw:        make(url.Values, len(values)),
	}
	for k, v := range values {
		if k != "hash" {
			data.Raw[k] = v
		}
	}

	if ts, err := strconv.ParseInt(values.Get("auth_date"), 10, 64); err == nil {
		data.AuthDate = time.Unix(ts, 0).UTC()
	}

	rawUser := values.Get("user")
	if rawUser == "" {
		return data, nil
	}

	var f userFields
	if err := json.Unmarshal([]byte(rawUser), &f); err != nil {
		return nil, ErrMalformedPayload
	}

	user := &User{}
	if f.ID != nil {
		// Clients send the id as a number or a numeric string; zero means absent.
		id, err := f.ID.Int64()
		if err != nil {
			return nil, ErrMalformedPayload
		}
		user.ID = id
		data.ExternalID = ""
		if id != 0 {
			data.ExternalID = strconv.FormatInt(id, 10)
		}
	}
	if f.FirstName != nil {
		user.FirstName = *f.FirstName
		data.FirstName = *f.FirstName
	}
	if f.LastName != nil {
		user.LastName = *f.LastName
		data.LastName = *f.LastName
	}
	if f.Username != nil {
		user.Username = *f.Username
		data.Username = *f.Username
	}
	if f.LanguageCode != nil {
		user.LanguageCode = *f.LanguageCode
	}
	if f.IsPremium != nil {
		user.IsPremium = *f.IsPremium
	}
	data.User = user

	return data, nil
}
