package detection

import (
	"fmt"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fraudshield/admin-dashboard/internal/handler"
	"github.com/fraudshield/admin-dashboard/internal/model"
	"github.com/fraudshield/admin-dashboard/internal/repository/memory"
	detectionService "github.com/fraudshield/admin-dashboard/internal/service/detection"
	"github.com/fraudshield/admin-dashboard/internal/ui/badge"
	"github.com/fraudshield/admin-dashboard/internal/ui/modal"
	"github.com/fraudshield/admin-dashboard/internal/ui/table"
	"github.com/fraudshield/admin-dashboard/internal/ui/toast"
	"github.com/fraudshield/admin-dashboard/internal/ui/view"
	apperrors "github.com/fraudshield/admin-dashboard/pkg/errors"
)

// Dialog kinds, selected with ?modal=.
const (
	modalEdit        = "edit"
	modalSimulate    = "simulate"
	modalSOPActions  = "actions"
	modalInvestigate = "investigate"
)

// Dialog button labels.
const (
	actionCancel    = "Cancel"
	actionClose     = "Close"
	actionSave      = "Save Changes"
	actionRun       = "Run Simulation"
	actionDuplicate = "Duplicate"
	actionArchive   = "Archive"
	actionDownload  = "Download"
	actionFlag      = "Flag"
	actionBlock     = "Block"
)

const (
	tabLibrary    = "library"
	tabSimulation = "simulation"
	tabVersions   = "versions"
)

type Handler struct {
	service detectionService.DetectionServicer
	pages   *handler.Pages
}

func NewHandler(service detectionService.DetectionServicer, pages *handler.Pages) *Handler {
	return &Handler{service: service, pages: pages}
}

func (h *Handler) RegisterRoutes(r gin.IRoutes, api *gin.RouterGroup) {
	r.GET("/patterns", h.PatternsPage)
	r.POST("/patterns/actions", h.PatternAction)
	r.GET("/sops", h.SOPsPage)
	r.POST("/sops/actions", h.SOPAction)
	r.GET("/sops/:id/download", h.DownloadSOP)
	r.GET("/insiders", h.InsidersPage)
	r.POST("/insiders/actions", h.InsiderAction)

	api.GET("/patterns", h.ListPatterns)
	api.GET("/patterns/:id", h.GetPattern)
	api.GET("/simulations/latest", h.LatestSimulation)
	api.GET("/sops", h.ListSOPs)
	api.GET("/sops/:id", h.GetSOP)
	api.GET("/insiders", h.ListAccessLogs)
}

type patternsContent struct {
	Filter      detectionService.PatternFilter
	Tab         string
	Tabs        []view.Tab
	Category    view.Select
	Severity    view.Select
	Status      view.Select
	Count       int
	Table       table.View
	Triggers    view.Chart
	Categories  view.Chart
	Simulation  *detectionService.Simulation
	Results     table.View
	Versions    table.View
	Selected    *model.Pattern
	Dialog      string
	TypeOptions []view.Option
	StatusOpts  []view.Option
}

func patternTable(base string) *table.Table[model.Pattern] {
	return table.MustNew(
		table.Column[model.Pattern]{Key: "id", Header: "Pattern ID"},
		table.Column[model.Pattern]{Key: "name", Header: "Name"},
		table.Column[model.Pattern]{Key: "ruleSet", Header: "Rule Set Summary"},
		table.Column[model.Pattern]{Key: "severity", Header: "Severity Score", Render: func(p model.Pattern) template.HTML {
			return badge.Score(p.Severity)
		}},
		table.Column[model.Pattern]{Key: "tags", Header: "Tags", Render: func(p model.Pattern) template.HTML {
			return handler.Tags(p.Tags)
		}},
		table.Column[model.Pattern]{Key: "triggers", Header: "# of Triggers"},
		table.Column[model.Pattern]{Key: "lastModified", Header: "Last Modified"},
		table.Column[model.Pattern]{Key: "actions", Header: "Actions", Render: func(p model.Pattern) template.HTML {
			return handler.Actions(
				handler.LinkButton(handler.WithModal(base, modalEdit, p.ID), "Edit", badge.Secondary),
				handler.LinkButton(handler.WithModal(base, modalSimulate, p.ID), "Simulate", badge.Primary),
			)
		}},
	)
}

var simulationTable = table.MustNew(
	table.Column[model.SimulationResult]{Key: "orderId", Header: "Order ID"},
	table.Column[model.SimulationResult]{Key: "fraudScore", Header: "Fraud Score", Render: func(r model.SimulationResult) template.HTML {
		return badge.Score(r.FraudScore)
	}},
	table.Column[model.SimulationResult]{Key: "matchedPatterns", Header: "Matched Patterns", Render: func(r model.SimulationResult) template.HTML {
		return handler.Tags(r.MatchedPatterns)
	}},
	table.Column[model.SimulationResult]{Key: "recommendedSOPs", Header: "Recommended SOPs", Render: func(r model.SimulationResult) template.HTML {
		return handler.Tags(r.RecommendedSOPs)
	}},
)

var versionTable = table.MustNew(
	table.Column[model.PatternVersion]{Key: "version", Header: "Version"},
	table.Column[model.PatternVersion]{Key: "date", Header: "Date"},
	table.Column[model.PatternVersion]{Key: "author", Header: "Author"},
	table.Column[model.PatternVersion]{Key: "changes", Header: "Changes"},
)

func editPatternModal(lock modal.ScrollLock, closeURL string, save func() error) *modal.Controller {
	return modal.New("Edit Pattern", []modal.Action{
		{Label: actionCancel, Variant: badge.Secondary, Dismiss: true},
		{Label: actionSave, Variant: badge.Primary, Dismiss: true, Submit: true, OnClick: save},
	}, modal.WithScrollLock(lock), modal.WithCloseURL(closeURL))
}

func simulateModal(lock modal.ScrollLock, closeURL string, run func() error) *modal.Controller {
	return modal.New("Pattern Simulation", []modal.Action{
		{Label: actionClose, Variant: badge.Secondary, Dismiss: true},
		{Label: actionRun, Variant: badge.Primary, Dismiss: true, Submit: true, OnClick: run},
	}, modal.WithScrollLock(lock), modal.WithCloseURL(closeURL))
}

// PatternsPage is the detection lab: the pattern library, the last
// simulation run and the version history, one per tab.
func (h *Handler) PatternsPage(c *gin.Context) {
	var f detectionService.PatternFilter
	banner := handler.BindFilter(c, &f)
	ctx := c.Request.Context()

	tab := c.DefaultQuery("tab", tabLibrary)
	content := patternsContent{
		Filter: f,
		Tab:    tab,
		Tabs: view.NewTabs(c.Request.URL, "tab", tab,
			tabLibrary+"=Library", tabSimulation+"=Simulation", tabVersions+"=Versions"),
		Category:   view.NewSelect("category", f.Category, "All Categories", "IP=IP", "Refund=Refund", "Chargeback=Chargeback"),
		Severity:   view.NewSelect("severity", f.Severity, "All Severities", "high=High (>80)", "medium=Medium (60-80)", "low=Low (<60)"),
		Status:     view.NewSelect("status", f.Status, "All Statuses", model.StatusActive, model.StatusTesting, model.StatusDeprecated),
		Triggers:   view.BarChart(memory.PatternTriggers()),
		Categories: view.BarChart(memory.PatternCategories()),
		Versions:   versionTable.Render(memory.PatternVersions(), false),
		TypeOptions: []view.Option{
			{Value: "regex", Label: "Regex"}, {Value: "logic", Label: "Logic"}, {Value: "ml", Label: "Machine Learning"},
		},
		StatusOpts: []view.Option{
			{Value: model.StatusActive, Label: "Active"}, {Value: model.StatusTesting, Label: "Testing"}, {Value: model.StatusDeprecated, Label: "Deprecated"},
		},
	}
	page := view.NewPage("Pattern Detection Lab", "/patterns", &content)
	page.Banner = banner

	patterns, err := h.service.Patterns(ctx, f)
	if err != nil {
		page.Banner = handler.ErrorBanner(c, err)
	}
	content.Count = len(patterns)
	content.Table = patternTable(c.Request.URL.RequestURI()).Render(patterns, false)

	if sim, ok := h.service.LastSimulation(); ok {
		content.Simulation = &sim
		content.Results = simulationTable.Render(sim.Results, false)
	} else {
		content.Results = simulationTable.Render(nil, false)
	}

	switch kind := c.Query(handler.QueryModal); kind {
	case modalEdit, modalSimulate:
		sel, err := h.service.Pattern(ctx, c.Query(handler.QueryID))
		if err != nil {
			page.Banner = handler.ErrorBanner(c, err)
			break
		}
		content.Selected = &sel
		content.Dialog = kind
		closeURL := handler.WithoutModal(c.Request.URL)
		if kind == modalEdit {
			page.OpenModal(editPatternModal(page.Body, closeURL, nil))
		} else {
			page.OpenModal(simulateModal(page.Body, closeURL, nil))
		}
	}

	h.pages.HTML(c, "patterns", page)
}

// PatternAction runs a button from the edit or simulation dialog.
func (h *Handler) PatternAction(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.PostForm("id")
	kind := c.PostForm("modal")
	back := handler.SafeReturn(c.PostForm("return"))

	if _, err := h.service.Pattern(ctx, id); err != nil {
		handler.Fail(c, err)
		return
	}

	notify := handler.Notifier(c)
	done := back
	var m *modal.Controller
	switch kind {
	case modalEdit:
		m = editPatternModal(&view.Body{}, back, func() error {
			var u detectionService.PatternUpdate
			if err := c.ShouldBind(&u); err != nil {
				return apperrors.BadRequest("invalid pattern form", err)
			}
			msg, err := h.service.SavePattern(ctx, id, u)
			if err != nil {
				return err
			}
			notify.Show(msg, toast.Success)
			return nil
		})
	case modalSimulate:
		if c.PostForm("action") == actionRun {
			done = handler.WithParam(back, "tab", tabSimulation)
		}
		m = simulateModal(&view.Body{}, back, func() error {
			msg, err := h.service.Simulate(ctx, id)
			if err != nil {
				return err
			}
			notify.Show(msg, toast.Success)
			return nil
		})
	default:
		handler.Fail(c, apperrors.BadRequest(fmt.Sprintf("unknown dialog %q", kind), nil))
		return
	}
	h.pages.RunAction(c, m, done, handler.WithModal(back, kind, id))
}

type sopsContent struct {
	Filter     detectionService.SOPFilter
	Tag        view.Select
	Status     view.Select
	Count      int
	Table      table.View
	Incidents  view.Chart
	Selected   *model.SOP
	Dialog     string
	StatusOpts []view.Option
}

func sopTable(base string) *table.Table[model.SOP] {
	return table.MustNew(
		table.Column[model.SOP]{Key: "name", Header: "SOP Title"},
		table.Column[model.SOP]{Key: "tags", Header: "Tags", Render: func(s model.SOP) template.HTML {
			return handler.Tags(s.Patterns)
		}},
		table.Column[model.SOP]{Key: "lastModified", Header: "Date Modified"},
		table.Column[model.SOP]{Key: "version", Header: "Version", Render: func(s model.SOP) template.HTML {
			return handler.Text("v" + s.Version)
		}},
		table.Column[model.SOP]{Key: "status", Header: "Status", Render: func(s model.SOP) template.HTML {
			return badge.Status(s.Status)
		}},
		table.Column[model.SOP]{Key: "actions", Header: "Actions", Render: func(s model.SOP) template.HTML {
			return handler.Actions(
				handler.LinkButton(handler.WithModal(base, modalEdit, s.ID), "Edit", badge.Secondary),
				handler.LinkButton(handler.WithModal(base, modalSOPActions, s.ID), "Actions", badge.Secondary),
			)
		}},
	)
}

func editSOPModal(lock modal.ScrollLock, closeURL string, save func() error) *modal.Controller {
	return modal.New("Edit SOP", []modal.Action{
		{Label: actionCancel, Variant: badge.Secondary, Dismiss: true},
		{Label: actionSave, Variant: badge.Primary, Dismiss: true, Submit: true, OnClick: save},
	}, modal.WithScrollLock(lock), modal.WithCloseURL(closeURL))
}

// sopActionsModal offers the SOP's lifecycle actions. Archived SOPs
// cannot be archived again.
func sopActionsModal(s model.SOP, lock modal.ScrollLock, closeURL string, duplicate, archive func() error) *modal.Controller {
	return modal.New("SOP Actions", []modal.Action{
		{Label: actionClose, Variant: badge.Secondary, Dismiss: true},
		{Label: actionDownload, Variant: badge.Secondary, Href: "/sops/" + s.ID + "/download"},
		{Label: actionDuplicate, Variant: badge.Secondary, Dismiss: true, Submit: true, OnClick: duplicate},
		{Label: actionArchive, Variant: badge.Danger, Dismiss: true, Submit: true, Disabled: s.Status == model.StatusArchived, OnClick: archive},
	}, modal.WithScrollLock(lock), modal.WithCloseURL(closeURL))
}

func (h *Handler) SOPsPage(c *gin.Context) {
	var f detectionService.SOPFilter
	banner := handler.BindFilter(c, &f)
	ctx := c.Request.Context()

	content := sopsContent{
		Filter: f,
		Tag: view.NewSelect("tag", f.Tag, "All Tags",
			"Multiple Returns=Multiple Returns", "IP Geolocation=IP Geolocation",
			"Login Anomaly=Login Anomaly", "Device Fingerprint=Device Fingerprint"),
		Status:    view.NewSelect("status", f.Status, "All Statuses", model.StatusActive, model.StatusTesting, model.StatusDeprecated, model.StatusArchived),
		Incidents: view.BarChart(memory.SOPIncidents()),
		StatusOpts: []view.Option{
			{Value: model.StatusActive, Label: "Active"}, {Value: model.StatusTesting, Label: "Testing"}, {Value: model.StatusDeprecated, Label: "Deprecated"},
		},
	}
	page := view.NewPage("SOP Management", "/sops", &content)
	page.Banner = banner

	sops, err := h.service.SOPs(ctx, f)
	if err != nil {
		page.Banner = handler.ErrorBanner(c, err)
	}
	content.Count = len(sops)
	content.Table = sopTable(c.Request.URL.RequestURI()).Render(sops, false)

	switch kind := c.Query(handler.QueryModal); kind {
	case modalEdit, modalSOPActions:
		sel, err := h.service.SOP(ctx, c.Query(handler.QueryID))
		if err != nil {
			page.Banner = handler.ErrorBanner(c, err)
			break
		}
		content.Selected = &sel
		content.Dialog = kind
		closeURL := handler.WithoutModal(c.Request.URL)
		if kind == modalEdit {
			page.OpenModal(editSOPModal(page.Body, closeURL, nil))
		} else {
			page.OpenModal(sopActionsModal(sel, page.Body, closeURL, nil, nil))
		}
	}

	h.pages.HTML(c, "sops", page)
}

// SOPAction runs a button from the edit or actions dialog.
func (h *Handler) SOPAction(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.PostForm("id")
	kind := c.PostForm("modal")
	back := handler.SafeReturn(c.PostForm("return"))

	sop, err := h.service.SOP(ctx, id)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	notify := handler.Notifier(c)
	run := func(fn func() (string, error)) func() error {
		return func() error {
			msg, err := fn()
			if err != nil {
				return err
			}
			notify.Show(msg, toast.Success)
			return nil
		}
	}

	var m *modal.Controller
	switch kind {
	case modalEdit:
		m = editSOPModal(&view.Body{}, back, run(func() (string, error) {
			var u detectionService.SOPUpdate
			if err := c.ShouldBind(&u); err != nil {
				return "", apperrors.BadRequest("invalid SOP form", err)
			}
			return h.service.SaveSOP(ctx, id, u)
		}))
	case modalSOPActions:
		m = sopActionsModal(sop, &view.Body{}, back,
			run(func() (string, error) { return h.service.DuplicateSOP(ctx, id) }),
			run(func() (string, error) { return h.service.ArchiveSOP(ctx, id) }),
		)
	default:
		handler.Fail(c, apperrors.BadRequest(fmt.Sprintf("unknown dialog %q", kind), nil))
		return
	}
	h.pages.RunAction(c, m, back, handler.WithModal(back, kind, id))
}

// DownloadSOP sends the SOP as a markdown attachment.
func (h *Handler) DownloadSOP(c *gin.Context) {
	doc, err := h.service.DownloadSOP(c.Request.Context(), c.Param("id"))
	if err != nil {
		handler.Fail(c, err)
		return
	}
	handler.Notifier(c).Show(doc.Message, toast.Success)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	c.Data(http.StatusOK, "text/markdown; charset=utf-8", doc.Body)
}

type insidersContent struct {
	Filter   detectionService.AccessLogFilter
	Kind     view.Select
	Risk     view.Select
	Count    int
	Table    table.View
	Behavior view.Chart
	Selected *model.AccessLog
}

func riskBadge(l model.AccessLog) template.HTML {
	switch l.Severity() {
	case "high":
		return badge.HTML(badge.Danger, l.Risk)
	case "medium":
		return badge.HTML(badge.Warning, l.Risk)
	default:
		return badge.HTML(badge.Primary, l.Risk)
	}
}

func accessLogTable(base string) *table.Table[model.AccessLog] {
	return table.MustNew(
		table.Column[model.AccessLog]{Key: "id", Header: "Log ID"},
		table.Column[model.AccessLog]{Key: "employeeId", Header: "Employee ID"},
		table.Column[model.AccessLog]{Key: "action", Header: "Action"},
		table.Column[model.AccessLog]{Key: "ip", Header: "IP Address"},
		table.Column[model.AccessLog]{Key: "timestamp", Header: "Timestamp"},
		table.Column[model.AccessLog]{Key: "risk", Header: "Risk", Render: riskBadge},
		table.Column[model.AccessLog]{Key: "state", Header: "State", Render: func(l model.AccessLog) template.HTML {
			switch {
			case l.Blocked:
				return badge.Status("blocked")
			case l.Flagged:
				return badge.Status("flagged")
			default:
				return badge.HTML(badge.Secondary, "Open")
			}
		}},
		table.Column[model.AccessLog]{Key: "actions", Header: "Actions", Render: func(l model.AccessLog) template.HTML {
			return handler.LinkButton(handler.WithModal(base, modalInvestigate, l.ID), "Investigate", badge.Secondary)
		}},
	)
}

// investigateModal shows one access log. Flag and Block each apply once.
func investigateModal(l model.AccessLog, lock modal.ScrollLock, closeURL string, flag, block func() error) *modal.Controller {
	return modal.New("Investigate "+l.ID, []modal.Action{
		{Label: actionClose, Variant: badge.Secondary, Dismiss: true},
		{Label: actionFlag, Variant: badge.Primary, Dismiss: true, Submit: true, Disabled: l.Flagged, OnClick: flag},
		{Label: actionBlock, Variant: badge.Danger, Dismiss: true, Submit: true, Disabled: l.Blocked, OnClick: block},
	}, modal.WithScrollLock(lock), modal.WithCloseURL(closeURL))
}

func (h *Handler) InsidersPage(c *gin.Context) {
	var f detectionService.AccessLogFilter
	banner := handler.BindFilter(c, &f)
	ctx := c.Request.Context()

	content := insidersContent{
		Filter:   f,
		Kind:     view.NewSelect("kind", f.Kind, "All Actions", "login", "refund", "camera"),
		Risk:     view.NewSelect("risk", f.Risk, "All Risk Levels", "high", "medium", "low"),
		Behavior: view.BarChart(memory.InsiderBehavior()),
	}
	page := view.NewPage("Insider Threat Detection", "/insiders", &content)
	page.Banner = banner

	logs, err := h.service.AccessLogs(ctx, f)
	if err != nil {
		page.Banner = handler.ErrorBanner(c, err)
	}
	content.Count = len(logs)
	content.Table = accessLogTable(c.Request.URL.RequestURI()).Render(logs, false)

	if c.Query(handler.QueryModal) == modalInvestigate {
		if sel, err := h.service.AccessLog(ctx, c.Query(handler.QueryID)); err != nil {
			page.Banner = handler.ErrorBanner(c, err)
		} else {
			content.Selected = &sel
			page.OpenModal(investigateModal(sel, page.Body, handler.WithoutModal(c.Request.URL), nil, nil))
		}
	}

	h.pages.HTML(c, "insiders", page)
}

func (h *Handler) InsiderAction(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.PostForm("id")
	back := handler.SafeReturn(c.PostForm("return"))

	l, err := h.service.AccessLog(ctx, id)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	notify := handler.Notifier(c)
	apply := func(fn func() (string, error)) func() error {
		return func() error {
			msg, err := fn()
			if err != nil {
				return err
			}
			notify.Show(msg, toast.Success)
			return nil
		}
	}
	m := investigateModal(l, &view.Body{}, back,
		apply(func() (string, error) { return h.service.FlagAccess(ctx, id) }),
		apply(func() (string, error) { return h.service.BlockAccess(ctx, id) }),
	)
	h.pages.RunAction(c, m, back, handler.WithModal(back, modalInvestigate, id))
}

func (h *Handler) ListPatterns(c *gin.Context) {
	var f detectionService.PatternFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		handler.Fail(c, err)
		return
	}
	patterns, err := h.service.Patterns(c.Request.Context(), f)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(patterns))
}

func (h *Handler) GetPattern(c *gin.Context) {
	p, err := h.service.Pattern(c.Request.Context(), c.Param("id"))
	if err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(p))
}

func (h *Handler) LatestSimulation(c *gin.Context) {
	sim, ok := h.service.LastSimulation()
	if !ok {
		handler.Fail(c, apperrors.NotFound("simulation", nil))
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(sim))
}

func (h *Handler) ListSOPs(c *gin.Context) {
	var f detectionService.SOPFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		handler.Fail(c, err)
		return
	}
	sops, err := h.service.SOPs(c.Request.Context(), f)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(sops))
}

func (h *Handler) GetSOP(c *gin.Context) {
	sop, err := h.service.SOP(c.Request.Context(), c.Param("id"))
	if err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(sop))
}

func (h *Handler) ListAccessLogs(c *gin.Context) {
	var f detectionService.AccessLogFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		handler.Fail(c, err)
		return
	}
	logs, err := h.service.AccessLogs(c.Request.Context(), f)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(logs))
}
