package model

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signed(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return token
}

func TestSession_ExpiresAt(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	s := &Session{AccessToken: signed(t, jwt.MapClaims{"exp": exp.Unix()}), RefreshToken: "RT", User: User{Email: "a@b.com"}}

	if got := s.ExpiresAt(); !got.Equal(exp) {
		t.Errorf("expected expiry %v, got %v", exp, got)
	}
	if s.IsExpired() {
		t.Error("token expiring in an hour reported as expired")
	}
}

func TestSession_ExpiredToken(t *testing.T) {
	s := &Session{AccessToken: signed(t, jwt.MapClaims{"exp": time.Now().Add(-time.Minute).Unix()})}
	if !s.IsExpired() {
		t.Error("expected expired token")
	}
}

func TestSession_OpaqueToken(t *testing.T) {
	s := &Session{AccessToken: "AT", RefreshToken: "RT", User: User{Email: "a@b.com"}}
	if !s.ExpiresAt().IsZero() {
		t.Errorf("expected zero expiry for opaque token, got %v", s.ExpiresAt())
	}
	if s.IsExpired() {
		t.Error("opaque token must not be treated as expired")
	}

	tok := s.Token()
	if tok.AccessToken != "AT" || tok.Type() != "Bearer" {
		t.Errorf("unexpected oauth2 token %+v", tok)
	}
}

func TestSession_Valid(t *testing.T) {
	full := Session{AccessToken: "AT", RefreshToken: "RT", User: User{Email: "a@b.com"}}
	if !full.Valid() {
		t.Error("expected full session to be valid")
	}

	for name, s := range map[string]Session{
		"no access":  {RefreshToken: "RT", User: User{Email: "a@b.com"}},
		"no refresh": {AccessToken: "AT", User: User{Email: "a@b.com"}},
		"no user":    {AccessToken: "AT", RefreshToken: "RT"},
	} {
		if s.Valid() {
			t.Errorf("%s: expected invalid session", name)
		}
	}

	var nilSession *Session
	if nilSession.Valid() || nilSession.Token() != nil {
		t.Error("nil session must be invalid and tokenless")
	}
}

func TestCredentials_JSON(t *testing.T) {
	data, _ := json.Marshal(Credentials{Email: "a@b.com", Password: "x"})
	if string(data) != `{"email":"a@b.com","password":"x"}` {
		t.Errorf("username should be omitted when empty, got %s", data)
	}

	login := Credentials{Username: "alice", Email: "a@b.com", Password: "x"}.LoginPayload()
	if _, ok := login["username"]; ok {
		t.Error("login payload must not carry username")
	}
}

func TestFileFilter_Query(t *testing.T) {
	if q := (FileFilter{}).Query(); len(q) != 0 {
		t.Errorf("empty filter should produce no params, got %v", q)
	}

	q := FileFilter{Folder: "reports"}.Query()
	if q.Get("folder") != "reports" || q.Has("fileType") {
		t.Errorf("unexpected query %v", q)
	}

	q = FileFilter{Folder: "reports", FileType: "pdf"}.Query()
	if q.Encode() != "fileType=pdf&folder=reports" {
		t.Errorf("unexpected encoding %s", q.Encode())
	}
}

func TestDownloadLink_Resolve(t *testing.T) {
	cases := []struct {
		name string
		link DownloadLink
		want string
		ok   bool
	}{
		{"url wins", DownloadLink{URL: "u", DownloadURL: "d", SignedURL: "s"}, "u", true},
		{"downloadUrl over signedUrl", DownloadLink{DownloadURL: "d", SignedURL: "s"}, "d", true},
		{"signedUrl last", DownloadLink{SignedURL: "s"}, "s", true},
		{"none", DownloadLink{}, "", false},
	}
	for _, tc := range cases {
		got, ok := tc.link.Resolve()
		if got != tc.want || ok != tc.ok {
			t.Errorf("%s: got (%q, %v), want (%q, %v)", tc.name, got, ok, tc.want, tc.ok)
		}
	}
}

func TestFileRecord_ServerFieldNames(t *testing.T) {
	raw := `{"_id":"f1","filename":"a.png","size":2048,"url":"https://cdn/a.png","contentType":"image/png",
		"fileType":"image","folder":"pics","user":"u1","uploadTime":"2024-05-01T10:00:00Z"}`

	var f FileRecord
	if err := json.Unmarshal([]byte(raw), &f); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if f.ID != "f1" || f.OwnerID != "u1" || f.Size != 2048 || f.FileType != FileTypeImage {
		t.Errorf("unexpected record %+v", f)
	}
	if f.UploadedAt.Year() != 2024 {
		t.Errorf("unexpected upload time %v", f.UploadedAt)
	}
}

func TestFileType_Label(t *testing.T) {
	for in, want := range map[FileType]string{
		FileTypeImage: "Image",
		FileTypePDF:   "PDF",
		"":            "Other",
		"archive":     "Archive",
	} {
		if got := in.Label(); got != want {
			t.Errorf("Label(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseFileType(t *testing.T) {
	cases := map[string]FileType{
		"pdf":     FileTypePDF,
		" Image ": FileTypeImage,
		"ARCHIVE": FileTypeArchive,
	}
	for in, want := range cases {
		got, ok := ParseFileType(in)
		if !ok || got != want {
			t.Errorf("ParseFileType(%q) = %q, %v", in, got, ok)
		}
	}
	if _, ok := ParseFileType("spreadsheet"); ok {
		t.Error("expected unknown type to be rejected")
	}
}

func TestFileTypeNames(t *testing.T) {
	names := FileTypeNames()
	for _, ft := range FileTypes {
		if !strings.Contains(names, string(ft)) {
			t.Errorf("missing %s in %q", ft, names)
		}
	}
}
