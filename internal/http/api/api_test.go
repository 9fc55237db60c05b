package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/expodesk/expodesk/internal/auth"
	"github.com/expodesk/expodesk/internal/config"
	"github.com/expodesk/expodesk/internal/db"
	"github.com/expodesk/expodesk/internal/invite"
	"github.com/expodesk/expodesk/internal/mail"
	"github.com/expodesk/expodesk/internal/models"
	"github.com/expodesk/expodesk/internal/otp"
	"github.com/expodesk/expodesk/internal/session"
	"github.com/expodesk/expodesk/internal/settings"
	"github.com/expodesk/expodesk/internal/storage"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func newTestRouter(t *testing.T) (*gin.Engine, *gorm.DB, *auth.Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	conn, err := db.Open("file:" + filepath.Join(dir, "api-test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}

	jwtCfg := config.JWTConfig{
		Secret:        "test-secret",
		AccessExpiry:  time.Minute,
		RefreshExpiry: time.Hour,
	}
	sessions := session.NewIssuer(jwtCfg, false)
	svc := auth.NewService(conn, invite.NewIssuer(conn), otp.NewService(otp.NewMemoryStore()), mail.NewSender(config.MailConfig{}), "http://localhost:3000")

	engine := gin.New()
	RegisterRoutes(engine, Deps{
		DB:       conn,
		Auth:     svc,
		Sessions: sessions,
		Files:    storage.NewLocalStore(filepath.Join(dir, "uploads")),
	})
	return engine, conn, svc
}

func doJSON(t *testing.T, engine *gin.Engine, method, path string, body any, mutate func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()
	var payload []byte
	if body != nil {
		var errMarshal error
		payload, errMarshal = json.Marshal(body)
		if errMarshal != nil {
			t.Fatalf("marshal body: %v", errMarshal)
		}
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if mutate != nil {
		mutate(req)
	}
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func loginAdmin(t *testing.T, engine *gin.Engine, svc *auth.Service) (string, []*http.Cookie) {
	t.Helper()
	if _, err := svc.BootstrapAdmin(context.Background()); err != nil {
		t.Fatalf("bootstrap admin: %v", err)
	}
	rec := doJSON(t, engine, http.MethodPost, "/api/login/", gin.H{
		"username": settings.BootstrapAdminUsername,
		"password": settings.BootstrapAdminPassword,
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, body %s", rec.Code, rec.Body.String())
	}
	var out struct {
		Access string `json:"access"`
	}
	if errDecode := json.Unmarshal(rec.Body.Bytes(), &out); errDecode != nil {
		t.Fatalf("decode login response: %v", errDecode)
	}
	if out.Access == "" {
		t.Fatalf("expected access token in login response")
	}
	cookies := rec.Result().Cookies()
	return out.Access, cookies
}

func TestHealth_OK(t *testing.T) {
	engine, _, _ := newTestRouter(t)

	rec := doJSON(t, engine, http.MethodGet, "/", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("health status = %d", rec.Code)
	}
	var out map[string]any
	if errDecode := json.Unmarshal(rec.Body.Bytes(), &out); errDecode != nil {
		t.Fatalf("decode health: %v", errDecode)
	}
	if out["status"] != "ok" || out["under_maintenance"] != false {
		t.Fatalf("unexpected health payload: %v", out)
	}
}

func TestHealth_UnreachableDatabase(t *testing.T) {
	engine, conn, _ := newTestRouter(t)

	sqlDB, errDB := conn.DB()
	if errDB != nil {
		t.Fatalf("underlying db: %v", errDB)
	}
	if errClose := sqlDB.Close(); errClose != nil {
		t.Fatalf("close db: %v", errClose)
	}

	rec := doJSON(t, engine, http.MethodGet, "/", nil, nil)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 with dead database, got %d", rec.Code)
	}
	var out map[string]any
	if errDecode := json.Unmarshal(rec.Body.Bytes(), &out); errDecode != nil {
		t.Fatalf("decode health: %v", errDecode)
	}
	if out["status"] != "error" {
		t.Fatalf("expected status error, got %v", out["status"])
	}
	if out["under_maintenance"] != true {
		t.Fatalf("expected under_maintenance=true with dead database, got %v", out["under_maintenance"])
	}
	if out["date_of_online"] != nil {
		t.Fatalf("expected null date_of_online, got %v", out["date_of_online"])
	}
}

func TestLogin_SetsRefreshCookie(t *testing.T) {
	engine, _, svc := newTestRouter(t)
	_, cookies := loginAdmin(t, engine, svc)

	var refresh *http.Cookie
	for _, cookie := range cookies {
		if cookie.Name == settings.RefreshCookieName {
			refresh = cookie
		}
	}
	if refresh == nil {
		t.Fatalf("expected refresh cookie to be set")
	}
	if !refresh.HttpOnly {
		t.Fatalf("expected refresh cookie to be HttpOnly")
	}
	if refresh.Path != "/" {
		t.Fatalf("expected refresh cookie path /, got %q", refresh.Path)
	}
}

func TestLogin_BadCredentials(t *testing.T) {
	engine, _, svc := newTestRouter(t)
	if _, err := svc.BootstrapAdmin(context.Background()); err != nil {
		t.Fatalf("bootstrap admin: %v", err)
	}

	rec := doJSON(t, engine, http.MethodPost, "/api/login/", gin.H{
		"username": "admin",
		"password": "wrong",
	}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 on bad credentials, got %d", rec.Code)
	}
}

func TestRefresh_TamperedCookie(t *testing.T) {
	engine, _, svc := newTestRouter(t)
	_, cookies := loginAdmin(t, engine, svc)

	rec := doJSON(t, engine, http.MethodPost, "/api/token/refresh-cookie/", nil, func(req *http.Request) {
		for _, cookie := range cookies {
			if cookie.Name == settings.RefreshCookieName {
				req.AddCookie(&http.Cookie{Name: cookie.Name, Value: cookie.Value + "x"})
			}
		}
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 on tampered refresh cookie, got %d", rec.Code)
	}
}

func TestRefresh_ValidCookie(t *testing.T) {
	engine, _, svc := newTestRouter(t)
	_, cookies := loginAdmin(t, engine, svc)

	rec := doJSON(t, engine, http.MethodPost, "/api/token/refresh-cookie/", nil, func(req *http.Request) {
		for _, cookie := range cookies {
			req.AddCookie(cookie)
		}
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("refresh status = %d, body %s", rec.Code, rec.Body.String())
	}
	var out struct {
		Access string `json:"access"`
	}
	if errDecode := json.Unmarshal(rec.Body.Bytes(), &out); errDecode != nil {
		t.Fatalf("decode refresh response: %v", errDecode)
	}
	if out.Access == "" {
		t.Fatalf("expected new access token from refresh")
	}
}

func TestMe_BearerToken(t *testing.T) {
	engine, _, svc := newTestRouter(t)
	access, _ := loginAdmin(t, engine, svc)

	rec := doJSON(t, engine, http.MethodGet, "/api/me/", nil, func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+access)
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("me status = %d, body %s", rec.Code, rec.Body.String())
	}
	var out map[string]any
	if errDecode := json.Unmarshal(rec.Body.Bytes(), &out); errDecode != nil {
		t.Fatalf("decode me: %v", errDecode)
	}
	if out["username"] != settings.BootstrapAdminUsername || out["role"] != "admin" {
		t.Fatalf("unexpected identity payload: %v", out)
	}
}

func TestSystemUpdate_RequiresAdmin(t *testing.T) {
	engine, conn, svc := newTestRouter(t)
	access, _ := loginAdmin(t, engine, svc)

	// No credential at all.
	rec := doJSON(t, engine, http.MethodPost, "/system/update/", gin.H{"under_maintenance": true}, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without credential, got %d", rec.Code)
	}

	// A sales account is authenticated but not authorized.
	ctx := context.Background()
	adminUser, errLogin := svc.Login(ctx, settings.BootstrapAdminUsername, settings.BootstrapAdminPassword)
	if errLogin != nil {
		t.Fatalf("login admin: %v", errLogin)
	}
	member, errCreate := svc.CreateTeamMember(ctx, adminUser, "Sales", "sales@co.com", "sales")
	if errCreate != nil {
		t.Fatalf("create team member: %v", errCreate)
	}
	if errSet := conn.Model(member).Updates(map[string]any{"is_password_set": true, "status": models.AccountActive}).Error; errSet != nil {
		t.Fatalf("activate member: %v", errSet)
	}

	salesAccess := mintAccess(t, member)
	rec = doJSON(t, engine, http.MethodPost, "/system/update/", gin.H{"under_maintenance": true}, func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+salesAccess)
	})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for sales account, got %d", rec.Code)
	}

	// The rejected update left the settings row untouched.
	unchanged, errSettings := db.GetSystemSettings(conn)
	if errSettings != nil {
		t.Fatalf("load settings: %v", errSettings)
	}
	if unchanged.UnderMaintenance {
		t.Fatalf("expected maintenance flag unchanged after 403")
	}

	// Admin toggles maintenance on.
	rec = doJSON(t, engine, http.MethodPost, "/system/update/", gin.H{"under_maintenance": true}, func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+access)
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("admin update status = %d, body %s", rec.Code, rec.Body.String())
	}

	health := doJSON(t, engine, http.MethodGet, "/", nil, nil)
	var out map[string]any
	if errDecode := json.Unmarshal(health.Body.Bytes(), &out); errDecode != nil {
		t.Fatalf("decode health: %v", errDecode)
	}
	if out["under_maintenance"] != true {
		t.Fatalf("expected maintenance on, got %v", out)
	}
}

func TestSystemUpdate_ClearsDateWithExplicitNull(t *testing.T) {
	engine, conn, svc := newTestRouter(t)
	access, _ := loginAdmin(t, engine, svc)
	asAdmin := func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+access)
	}

	when := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	rec := doJSON(t, engine, http.MethodPost, "/system/update/", gin.H{
		"under_maintenance": true,
		"date_of_online":    when,
	}, asAdmin)
	if rec.Code != http.StatusOK {
		t.Fatalf("set date status = %d, body %s", rec.Code, rec.Body.String())
	}
	row, errSettings := db.GetSystemSettings(conn)
	if errSettings != nil {
		t.Fatalf("load settings: %v", errSettings)
	}
	if row.DateOfOnline == nil || !row.DateOfOnline.Equal(when) {
		t.Fatalf("expected stored date %v, got %v", when, row.DateOfOnline)
	}

	// An absent field leaves the date alone.
	rec = doJSON(t, engine, http.MethodPost, "/system/update/", gin.H{
		"under_maintenance": true,
	}, asAdmin)
	if rec.Code != http.StatusOK {
		t.Fatalf("partial update status = %d", rec.Code)
	}
	row, errSettings = db.GetSystemSettings(conn)
	if errSettings != nil {
		t.Fatalf("load settings: %v", errSettings)
	}
	if row.DateOfOnline == nil {
		t.Fatalf("expected date preserved when field is absent")
	}

	// An explicit null clears it.
	rec = doJSON(t, engine, http.MethodPost, "/system/update/", gin.H{
		"date_of_online": nil,
	}, asAdmin)
	if rec.Code != http.StatusOK {
		t.Fatalf("clear date status = %d, body %s", rec.Code, rec.Body.String())
	}
	row, errSettings = db.GetSystemSettings(conn)
	if errSettings != nil {
		t.Fatalf("load settings: %v", errSettings)
	}
	if row.DateOfOnline != nil {
		t.Fatalf("expected date cleared by explicit null, got %v", row.DateOfOnline)
	}
}

func TestTeamList_DerivedStatus(t *testing.T) {
	engine, _, svc := newTestRouter(t)
	access, _ := loginAdmin(t, engine, svc)

	adminUser, errLogin := svc.Login(context.Background(), settings.BootstrapAdminUsername, settings.BootstrapAdminPassword)
	if errLogin != nil {
		t.Fatalf("login admin: %v", errLogin)
	}
	if _, errCreate := svc.CreateTeamMember(context.Background(), adminUser, "Sales", "sales@co.com", "sales"); errCreate != nil {
		t.Fatalf("create team member: %v", errCreate)
	}

	rec := doJSON(t, engine, http.MethodGet, "/api/team/list/", nil, func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+access)
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("team list status = %d, body %s", rec.Code, rec.Body.String())
	}
	var rows []map[string]any
	if errDecode := json.Unmarshal(rec.Body.Bytes(), &rows); errDecode != nil {
		t.Fatalf("decode team list: %v", errDecode)
	}
	if len(rows) != 1 {
		t.Fatalf("expected one team member, got %d", len(rows))
	}
	if rows[0]["status"] != "inactive" {
		t.Fatalf("expected derived status inactive before setup, got %v", rows[0]["status"])
	}
}

func TestRegistrations_PublicCreateAdminList(t *testing.T) {
	engine, _, _ := newTestRouter(t)

	rec := doJSON(t, engine, http.MethodPost, "/api/visitor-registrations", gin.H{
		"name":  "Visitor",
		"email": "v@x.com",
	}, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("visitor create status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, engine, http.MethodGet, "/api/visitor-registrations", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("visitor list status = %d", rec.Code)
	}
	var rows []map[string]any
	if errDecode := json.Unmarshal(rec.Body.Bytes(), &rows); errDecode != nil {
		t.Fatalf("decode list: %v", errDecode)
	}
	if len(rows) != 1 {
		t.Fatalf("expected one registration, got %d", len(rows))
	}
}

func TestSendOTP_InvalidToken(t *testing.T) {
	engine, _, _ := newTestRouter(t)

	rec := doJSON(t, engine, http.MethodPost, "/api/password/send-otp/", gin.H{
		"email": "sales@co.com",
		"token": "bogus",
	}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown token, got %d", rec.Code)
	}
	var out map[string]any
	if errDecode := json.Unmarshal(rec.Body.Bytes(), &out); errDecode != nil {
		t.Fatalf("decode body: %v", errDecode)
	}
	if out["detail"] != "Invalid or expired link" {
		t.Fatalf("unexpected detail: %v", out["detail"])
	}
}

func TestSendOTP_EmailMismatch(t *testing.T) {
	engine, conn, svc := newTestRouter(t)
	if _, err := svc.BootstrapAdmin(context.Background()); err != nil {
		t.Fatalf("bootstrap admin: %v", err)
	}
	adminUser, errLogin := svc.Login(context.Background(), settings.BootstrapAdminUsername, settings.BootstrapAdminPassword)
	if errLogin != nil {
		t.Fatalf("login admin: %v", errLogin)
	}
	member, errCreate := svc.CreateTeamMember(context.Background(), adminUser, "Sales", "sales@co.com", "sales")
	if errCreate != nil {
		t.Fatalf("create team member: %v", errCreate)
	}
	var tokenRow models.PasswordSetupToken
	if errFind := conn.Where("user_id = ?", member.ID).First(&tokenRow).Error; errFind != nil {
		t.Fatalf("find setup token: %v", errFind)
	}

	rec := doJSON(t, engine, http.MethodPost, "/api/password/send-otp/", gin.H{
		"email": "other@co.com",
		"token": tokenRow.Token,
	}, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for email mismatch, got %d", rec.Code)
	}
}

func uploadGalleryImage(t *testing.T, engine *gin.Engine, access, page, section string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	if errField := writer.WriteField("page", page); errField != nil {
		t.Fatalf("write field: %v", errField)
	}
	if errField := writer.WriteField("section", section); errField != nil {
		t.Fatalf("write field: %v", errField)
	}
	part, errPart := writer.CreateFormFile("image", "pic.png")
	if errPart != nil {
		t.Fatalf("create form file: %v", errPart)
	}
	if _, errWrite := part.Write([]byte("not-a-real-png")); errWrite != nil {
		t.Fatalf("write image: %v", errWrite)
	}
	if errClose := writer.Close(); errClose != nil {
		t.Fatalf("close writer: %v", errClose)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/gallery", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+access)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestGallery_BannerCapEnforced(t *testing.T) {
	engine, _, svc := newTestRouter(t)
	access, _ := loginAdmin(t, engine, svc)

	first := uploadGalleryImage(t, engine, access, "about", "banner")
	if first.Code != http.StatusCreated {
		t.Fatalf("first upload status = %d, body %s", first.Code, first.Body.String())
	}
	second := uploadGalleryImage(t, engine, access, "about", "banner")
	if second.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 over banner cap, got %d", second.Code)
	}

	rec := doJSON(t, engine, http.MethodGet, "/api/gallery?page=about&section=banner", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("gallery list status = %d", rec.Code)
	}
	var rows []map[string]any
	if errDecode := json.Unmarshal(rec.Body.Bytes(), &rows); errDecode != nil {
		t.Fatalf("decode gallery list: %v", errDecode)
	}
	if len(rows) != 1 {
		t.Fatalf("expected one banner image, got %d", len(rows))
	}
}

// mintAccess builds a bearer token for a user using the test secret.
func mintAccess(t *testing.T, user *models.User) string {
	t.Helper()
	issuer := session.NewIssuer(config.JWTConfig{
		Secret:        "test-secret",
		AccessExpiry:  time.Minute,
		RefreshExpiry: time.Hour,
	}, false)
	access, err := issuer.AccessToken(user)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	return access
}
