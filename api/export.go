package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/labstack/echo/v4"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"todo-api/domain"
)

// backup schema: the persisted file format, enforced on import so a
// corrupt or hand-edited backup cannot replace a healthy collection.
const backupSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "array",
  "items": {
    "type": "object",
    "required": ["id", "title", "priority", "category", "completed"],
    "additionalProperties": false,
    "properties": {
      "id": {"type": "integer", "minimum": 1},
      "title": {"type": "string", "minLength": 1},
      "priority": {"enum": ["Low", "Medium", "High"]},
      "category": {"type": "string"},
      "completed": {"type": "boolean"}
    }
  }
}`

var compiledBackupSchema = mustCompileBackupSchema()

func mustCompileBackupSchema() *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("backup.schema.json", strings.NewReader(backupSchema)); err != nil {
		panic(fmt.Sprintf("add backup schema: %v", err))
	}
	return compiler.MustCompile("backup.schema.json")
}

// tomlDocument wraps the collection for TOML, which cannot encode a
// top-level array.
type tomlDocument struct {
	Tasks []domain.Task `toml:"tasks"`
}

func exportTasks(repo Repository, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, err := auth.UserIDFromAuthHeader(c.Request().Header.Get("Authorization")); err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}
		all, err := repo.List(c.Request().Context())
		if err != nil {
			return respondError(c, err)
		}
		if all == nil {
			all = []domain.Task{}
		}

		format := strings.ToLower(c.QueryParam("format"))
		var (
			data        []byte
			contentType string
			filename    string
		)
		switch format {
		case "", "json":
			data, err = json.MarshalIndent(all, "", "  ")
			contentType = echo.MIMEApplicationJSON
			filename = "todos_backup.json"
		case "yaml":
			data, err = yaml.Marshal(all)
			contentType = "application/x-yaml"
			filename = "todos_backup.yaml"
		case "toml":
			var buf bytes.Buffer
			err = toml.NewEncoder(&buf).Encode(tomlDocument{Tasks: all})
			data = buf.Bytes()
			contentType = "application/toml"
			filename = "todos_backup.toml"
		default:
			return c.String(http.StatusBadRequest, fmt.Sprintf("unsupported export format: %q", format))
		}
		if err != nil {
			c.Logger().Error(err)
			return c.String(http.StatusInternalServerError, "internal error")
		}
		if format == "" || format == "json" {
			data = append(data, '\n')
		}

		c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
		return c.Blob(http.StatusOK, contentType, data)
	}
}

func importTasks(repo Repository, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, err := auth.UserIDFromAuthHeader(c.Request().Header.Get("Authorization")); err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}

		body, err := io.ReadAll(io.LimitReader(c.Request().Body, importBodyMaxSize))
		if err != nil {
			return c.String(http.StatusBadRequest, "invalid body")
		}

		var raw any
		if err := json.Unmarshal(body, &raw); err != nil {
			return c.String(http.StatusBadRequest, "invalid json body")
		}
		if err := compiledBackupSchema.Validate(raw); err != nil {
			return c.String(http.StatusBadRequest, fmt.Sprintf("backup does not match schema: %v", err))
		}

		var imported []domain.Task
		if err := json.Unmarshal(body, &imported); err != nil {
			return c.String(http.StatusBadRequest, "invalid json body")
		}
		count, err := repo.Replace(c.Request().Context(), imported)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(http.StatusOK, importResponse{Imported: count})
	}
}
