package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	credentialdomain "github.com/opsdeck/opsdeck/internal/credential/domain"
	incidentdomain "github.com/opsdeck/opsdeck/internal/incident/domain"
	projectdomain "github.com/opsdeck/opsdeck/internal/project/domain"
	subscriptiondomain "github.com/opsdeck/opsdeck/internal/subscription/domain"
	tooldomain "github.com/opsdeck/opsdeck/internal/tool/domain"
	usagedomain "github.com/opsdeck/opsdeck/internal/usage/domain"
	walletdomain "github.com/opsdeck/opsdeck/internal/wallet/domain"
)

type createToolRequest struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	BillingType string `json:"billing_type"`
	Vendor      string `json:"vendor"`
	Owner       string `json:"owner"`
	Environment string `json:"environment"`
	Critical    bool   `json:"critical"`
	RiskLevel   string `json:"risk_level"`
	Status      string `json:"status"`
	Description string `json:"description"`
}

type updateToolRequest struct {
	Name        *string `json:"name,omitempty"`
	Category    *string `json:"category,omitempty"`
	BillingType *string `json:"billing_type,omitempty"`
	Vendor      *string `json:"vendor,omitempty"`
	Owner       *string `json:"owner,omitempty"`
	Environment *string `json:"environment,omitempty"`
	Critical    *bool   `json:"critical,omitempty"`
	RiskLevel   *string `json:"risk_level,omitempty"`
	Status      *string `json:"status,omitempty"`
	Description *string `json:"description,omitempty"`
}

// toolDetailResponse is the one-page join the tool detail view renders.
// Absent children stay null rather than failing the page.
type toolDetailResponse struct {
	Tool         tooldomain.Tool                       `json:"tool"`
	Subscription *subscriptiondomain.Subscription      `json:"subscription,omitempty"`
	Wallet       *walletdomain.WalletDetail            `json:"wallet,omitempty"`
	UsageLogs    []usagedomain.UsageLog                `json:"usage_logs"`
	Projects     []projectdomain.ToolMapping           `json:"projects"`
	Credential   *credentialdomain.CredentialReference `json:"credential,omitempty"`
	Incidents    []incidentdomain.IncidentLog          `json:"incidents"`
}

func (s *Server) CreateTool(c *gin.Context) {
	var req createToolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.toolSvc.Create(c.Request.Context(), tooldomain.CreateToolRequest{
		Name:        strings.TrimSpace(req.Name),
		Category:    strings.TrimSpace(req.Category),
		BillingType: tooldomain.BillingType(strings.TrimSpace(req.BillingType)),
		Vendor:      strings.TrimSpace(req.Vendor),
		Owner:       strings.TrimSpace(req.Owner),
		Environment: strings.TrimSpace(req.Environment),
		Critical:    req.Critical,
		RiskLevel:   tooldomain.RiskLevel(strings.TrimSpace(req.RiskLevel)),
		Status:      tooldomain.Status(strings.TrimSpace(req.Status)),
		Description: strings.TrimSpace(req.Description),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateTool(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req updateToolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.toolSvc.Update(c.Request.Context(), id, tooldomain.UpdateToolRequest{
		Name:        trimStringPtr(req.Name),
		Category:    trimStringPtr(req.Category),
		BillingType: billingTypePtr(req.BillingType),
		Vendor:      trimStringPtr(req.Vendor),
		Owner:       trimStringPtr(req.Owner),
		Environment: trimStringPtr(req.Environment),
		Critical:    req.Critical,
		RiskLevel:   riskLevelPtr(req.RiskLevel),
		Status:      statusPtr(req.Status),
		Description: trimStringPtr(req.Description),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListTools(c *gin.Context) {
	var query struct {
		Status      string `form:"status"`
		BillingType string `form:"billing_type"`
		RiskLevel   string `form:"risk_level"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.toolSvc.List(c.Request.Context(), tooldomain.ListToolFilter{
		Status:      tooldomain.Status(strings.TrimSpace(query.Status)),
		BillingType: tooldomain.BillingType(strings.TrimSpace(query.BillingType)),
		RiskLevel:   tooldomain.RiskLevel(strings.TrimSpace(query.RiskLevel)),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// GetToolDetail joins everything hanging off one tool. Child reads are
// independent: a failed one logs and leaves its section empty.
func (s *Server) GetToolDetail(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	ctx := c.Request.Context()
	toolRow, err := s.toolSvc.GetByID(ctx, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	detail := toolDetailResponse{
		Tool:      toolRow,
		UsageLogs: []usagedomain.UsageLog{},
		Projects:  []projectdomain.ToolMapping{},
		Incidents: []incidentdomain.IncidentLog{},
	}
	log := s.log.With(zap.String("tool_id", id.String()))

	if sub, err := s.subscriptionSvc.GetByToolID(ctx, id); err != nil {
		log.Warn("tool detail: load subscription", zap.Error(err))
	} else {
		detail.Subscription = sub
	}

	if walletDetail, err := s.walletSvc.GetDetailByToolID(ctx, id); err != nil {
		log.Warn("tool detail: load wallet", zap.Error(err))
	} else {
		detail.Wallet = walletDetail
	}

	if logs, err := s.usageSvc.ListByTool(ctx, id, 6); err != nil {
		log.Warn("tool detail: load usage logs", zap.Error(err))
	} else if logs != nil {
		detail.UsageLogs = logs
	}

	if mappings, err := s.projectSvc.ListMappingsByTool(ctx, id); err != nil {
		log.Warn("tool detail: load project mappings", zap.Error(err))
	} else if mappings != nil {
		detail.Projects = mappings
	}

	if cred, err := s.credentialSvc.GetByToolID(ctx, id); err != nil {
		log.Warn("tool detail: load credential", zap.Error(err))
	} else {
		detail.Credential = cred
	}

	if incidents, err := s.incidentSvc.List(ctx, incidentdomain.ListIncidentFilter{ToolID: id}); err != nil {
		log.Warn("tool detail: load incidents", zap.Error(err))
	} else if incidents != nil {
		detail.Incidents = incidents
	}

	c.JSON(http.StatusOK, gin.H{"data": detail})
}

func billingTypePtr(v *string) *tooldomain.BillingType {
	if v == nil {
		return nil
	}
	t := tooldomain.BillingType(strings.TrimSpace(*v))
	return &t
}

func riskLevelPtr(v *string) *tooldomain.RiskLevel {
	if v == nil {
		return nil
	}
	t := tooldomain.RiskLevel(strings.TrimSpace(*v))
	return &t
}

func statusPtr(v *string) *tooldomain.Status {
	if v == nil {
		return nil
	}
	t := tooldomain.Status(strings.TrimSpace(*v))
	return &t
}
