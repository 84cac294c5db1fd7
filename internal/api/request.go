package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strconv"
	"strings"

	"bookshop/internal/apperr"
	"bookshop/internal/db"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

func init() {
	// report validation failures by their JSON names
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(jsonName)
	}
}

func jsonName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}

// bindJSON decodes the request body into req and runs its binding rules, turning
// failures into apperr kinds.
func bindJSON(c *gin.Context, req any) error {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		if fe.Tag() == "required" {
			return apperr.Missing(fe.Field())
		}
		return apperr.Newf(apperr.Validation, "Invalid value for %q.", fe.Field())
	}
	return apperr.Malformed(err)
}

// looseInt is an integer that may arrive as a JSON number or as a string holding
// one. Browser forms post select values and route params as strings.
type looseInt int64

func (n *looseInt) UnmarshalJSON(b []byte) error {
	raw := b
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		raw = []byte(strings.TrimSpace(s))
	}
	var v int64
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("looseInt: %q is not an integer", b)
	}
	*n = looseInt(v)
	return nil
}

// decodeObject reads the body as a JSON object without interpreting its values.
func decodeObject(c *gin.Context) (map[string]json.RawMessage, error) {
	var raw map[string]json.RawMessage
	if c.Request.Body == nil {
		return nil, apperr.Malformed(io.EOF)
	}
	if err := json.NewDecoder(c.Request.Body).Decode(&raw); err != nil {
		return nil, apperr.Malformed(err)
	}
	if raw == nil {
		return nil, apperr.Malformed(errors.New("body is null"))
	}
	return raw, nil
}

// parseID reads the :id path parameter. A non-numeric id cannot match any row.
func parseID(c *gin.Context, entity string) (uint, error) {
	raw := c.Param("id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.Newf(apperr.NotFound, "%s with ID %s not found", entity, raw)
	}
	return uint(id), nil
}

func queryUint(c *gin.Context, name string) (*uint, error) {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil, apperr.Newf(apperr.Validation, "Invalid value for %q.", name)
	}
	u := uint(v)
	return &u, nil
}

// parsePage reads optional limit/offset parameters. Without limit every row is returned.
func parsePage(c *gin.Context) (db.Page, error) {
	var p db.Page
	limit, err := queryUint(c, "limit")
	if err != nil {
		return p, err
	}
	offset, err := queryUint(c, "offset")
	if err != nil {
		return p, err
	}
	if limit != nil {
		p.Limit = int(*limit)
	}
	if offset != nil {
		p.Offset = int(*offset)
	}
	return p, nil
}
