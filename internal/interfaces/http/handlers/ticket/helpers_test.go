package ticket

import (
	"net/http"
	"net/http/httptest"
	"strings"
)

func uintPtr(v uint) *uint {
	return &v
}

func rawJSONRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}
