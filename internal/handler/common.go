package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/samber/mo"
)

// requestTimeout bounds the database work of a single request.
const requestTimeout = 5 * time.Second

// idField detects a server-assigned id in a create body.
type idField = mo.Option[json.RawMessage]

// idSupplied reports whether a create body carries a server-assigned id. An
// explicit null counts as not supplied.
func idSupplied(id idField) bool {
	raw, ok := id.Get()
	if !ok {
		return false
	}
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && !bytes.Equal(raw, []byte("null"))
}

// errNullField is returned when a body sets a field to null. Absent fields
// are left unchanged; null has no column value to write.
type errNullField string

func (e errNullField) Error() string { return string(e) + " must not be null" }

// nonNull unwraps an optional field that may be sent as null. A present null
// is rejected.
func nonNull[T any](name string, v mo.Option[*T]) (mo.Option[T], error) {
	p, ok := v.Get()
	if !ok {
		return mo.None[T](), nil
	}
	if p == nil {
		return mo.None[T](), errNullField(name)
	}
	return mo.Some(*p), nil
}

func requestContext(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), requestTimeout)
}

// parseID reads the :id path parameter. Any integer is accepted; ids that
// match no row are answered by the repository as not found.
func parseID(c echo.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

func errorJSON(c echo.Context, status int, msg string) error {
	return c.JSON(status, map[string]string{"error": msg})
}

func messageJSON(c echo.Context, msg string) error {
	return c.JSON(http.StatusOK, map[string]string{"message": msg})
}

func badID(c echo.Context) error {
	return errorJSON(c, http.StatusBadRequest, "invalid id")
}

func badBody(c echo.Context) error {
	return errorJSON(c, http.StatusBadRequest, "invalid request body")
}

// internalError logs err and answers with a generic 500.
func internalError(c echo.Context, op string, err error) error {
	log.Printf("handler: %s %s: %s: %v", c.Request().Method, c.Request().URL.Path, op, err)
	return errorJSON(c, http.StatusInternalServerError, "internal server error")
}
