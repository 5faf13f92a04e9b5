package http

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/donation-desk/internal/form"
)

// RecordLoader fetches a document snapshot for the desk
type RecordLoader interface {
	LoadRecord(ctx context.Context, doctype, name string) (*form.Record, error)
}

// DeskView is the rendered state of a record view after a request
type DeskView struct {
	Record         *form.Record  `json:"record"`
	Actions        []form.Action `json:"actions"`
	Frozen         bool          `json:"frozen"`
	FreezeMessages []string      `json:"freeze_messages,omitempty"`
	Reloaded       bool          `json:"reloaded"`
	Errors         []string      `json:"errors,omitempty"`
}

// Desk serves record views driven by the form controllers
type Desk struct {
	registry *form.Registry
	caller   form.Caller
	loader   RecordLoader
	logger   Logger
}

// NewDesk creates the desk surface
func NewDesk(registry *form.Registry, caller form.Caller, loader RecordLoader, logger Logger) *Desk {
	return &Desk{
		registry: registry,
		caller:   caller,
		loader:   loader,
		logger:   logger,
	}
}

// Show handles GET /desk/:doctype/:name
func (d *Desk) Show(c *gin.Context) {
	view, err := d.open(c)
	if err != nil {
		d.fail(c, err)
		return
	}
	d.render(c, http.StatusOK, view)
}

// Act handles POST /desk/:doctype/:name/actions/:action. The action runs
// against a freshly refreshed view; errors the controller surfaced are
// returned in the view rather than as a failed request. Browsers are
// redirected back to the record unless there is an error to show.
func (d *Desk) Act(c *gin.Context) {
	view, err := d.open(c)
	if err != nil {
		d.fail(c, err)
		return
	}

	slug := c.Param("action")
	if err := view.Activate(c.Request.Context(), slug); err != nil {
		if errors.Is(err, form.ErrUnknownAction) || errors.Is(err, form.ErrFrozen) {
			d.fail(c, err)
			return
		}
		d.logger.Info("Desk action failed", "action", slug, "error", err.Error())
	}

	if wantsHTML(c) && len(view.Errors()) == 0 {
		c.Redirect(http.StatusSeeOther, "/desk/"+c.Param("doctype")+"/"+c.Param("name"))
		return
	}
	d.render(c, http.StatusOK, view)
}

// open loads the record and runs the refresh handlers on a new view; a
// reload inside an action runs them again
func (d *Desk) open(c *gin.Context) (*form.RecordingView, error) {
	ctx := c.Request.Context()

	doctype, err := resolveDoctype(c.Param("doctype"))
	if err != nil {
		return nil, err
	}
	name := c.Param("name")

	rec, err := d.loader.LoadRecord(ctx, doctype, name)
	if err != nil {
		return nil, err
	}

	view, err := d.registry.OpenView(ctx, rec, func(ctx context.Context) (*form.Record, error) {
		return d.loader.LoadRecord(ctx, doctype, name)
	})
	if err != nil {
		d.logger.Error("Refresh handlers failed", "doctype", doctype, "name", name, "error", err)
		view.ShowError(err)
	}
	return view, nil
}

func (d *Desk) render(c *gin.Context, status int, view *form.RecordingView) {
	out := DeskView{
		Record:         view.Record(),
		Actions:        view.Actions(),
		Frozen:         view.Frozen(),
		FreezeMessages: view.FreezeMessages(),
		Reloaded:       view.Reloads() > 0,
	}
	for _, err := range view.Errors() {
		out.Errors = append(out.Errors, err.Error())
	}
	if out.Actions == nil {
		out.Actions = []form.Action{}
	}

	if wantsHTML(c) {
		c.HTML(status, "desk", out)
		return
	}
	c.JSON(status, Response{Success: true, Data: out})
}

func (d *Desk) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		d.logger.Error("Desk request failed", "path", c.Request.URL.Path, "error", err)
		c.JSON(status, Response{Success: false, Error: "internal server error"})
		return
	}
	c.JSON(status, Response{Success: false, Error: err.Error()})
}

func wantsHTML(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept"), "text/html")
}

var deskTemplate = template.Must(template.New("desk").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>{{.Record.Doctype}} {{.Record.Name}}</title></head>
<body>
<h1>{{.Record.Doctype}}: {{.Record.Name}}</h1>
{{range .Errors}}<p class="error">{{.}}</p>{{end}}
<table>
{{range $k, $v := .Record.Fields}}<tr><th>{{$k}}</th><td>{{$v}}</td></tr>
{{end}}</table>
{{range .Actions}}<form method="post" action="/desk/{{$.Record.Doctype}}/{{$.Record.Name}}/actions/{{.Slug}}"><button type="submit">{{.Label}}</button></form>
{{end}}</body>
</html>
`))
