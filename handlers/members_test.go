package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/mkbenefits/benefits_backend/config"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// installMockDB swaps the global gorm handle for a sqlmock-backed one and
// restores it afterwards, so handler tests can drive the validation path
// end to end.
func installMockDB(t *testing.T) sqlmock.Sqlmock {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("gorm open error: %v", err)
	}

	prev := config.GetDB()
	config.SetDB(db)
	t.Cleanup(func() {
		config.SetDB(prev)
		sqlDB.Close()
	})
	return mock
}

func memberRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/api/members", ListMembers)
	r.GET("/api/members/:id", GetMember)
	r.POST("/api/members", CreateMember)
	r.PUT("/api/members/:id", UpdateMember)
	return r
}

func memberJSON() string {
	return `{"number":7,"first_name":"Sam","last_name":"Vale","lock_version":0}`
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestUpdateMemberStoreUnavailableMapsTo503(t *testing.T) {
	prev := config.GetDB()
	config.SetDB(nil)
	t.Cleanup(func() { config.SetDB(prev) })

	w := doJSON(t, memberRouter(), "PUT", "/api/members/5", memberJSON())
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 when the store is down, got %d (body %s)", w.Code, w.Body.String())
	}
}

func TestUpdateMemberUnknownIdMapsTo404(t *testing.T) {
	mock := installMockDB(t)
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `members`").
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(0))

	w := doJSON(t, memberRouter(), "PUT", "/api/members/5", memberJSON())
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for an unknown id, got %d (body %s)", w.Code, w.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestCreateMemberDuplicateNumberMapsTo400(t *testing.T) {
	mock := installMockDB(t)
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `members`").
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(1))

	w := doJSON(t, memberRouter(), "POST", "/api/members", memberJSON())
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for a duplicate number, got %d (body %s)", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "duplicate number") {
		t.Fatalf("expected a duplicate-number message, got %s", w.Body.String())
	}
}

func TestCreateMemberInvalidEmailMapsTo400(t *testing.T) {
	mock := installMockDB(t)
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `members`").
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(0))

	body := `{"number":7,"first_name":"Sam","last_name":"Vale","email":"not-an-email"}`
	w := doJSON(t, memberRouter(), "POST", "/api/members", body)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for an invalid email, got %d (body %s)", w.Code, w.Body.String())
	}
}

func TestListMembersByName(t *testing.T) {
	mock := installMockDB(t)
	mock.ExpectQuery("SELECT (.+) FROM `members` WHERE LOWER\\(last_name\\) LIKE \\?").
		WithArgs("%vale%").
		WillReturnRows(sqlmock.NewRows([]string{"id", "number", "first_name", "last_name", "lock_version"}).
			AddRow(2, 7, "Sam", "Vale", 0))

	w := doJSON(t, memberRouter(), "GET", "/api/members?name=Vale", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body %s)", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	data, ok := body["data"].([]interface{})
	if !ok || len(data) != 1 {
		t.Fatalf("expected one matching member, got %v", body["data"])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestGetMemberNotFoundMapsTo404(t *testing.T) {
	mock := installMockDB(t)
	mock.ExpectQuery("SELECT (.+) FROM `members`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "number", "first_name", "last_name", "lock_version"}))

	w := doJSON(t, memberRouter(), "GET", "/api/members/99", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d (body %s)", w.Code, w.Body.String())
	}
}
