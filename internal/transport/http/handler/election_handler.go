package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"election-commission/internal/domain"
	"election-commission/internal/service"
	"election-commission/internal/transport/http/ez"
)

type ElectionHandler struct{ svc *service.ElectionService }

func NewElectionHandler(svc *service.ElectionService) *ElectionHandler {
	return &ElectionHandler{svc: svc}
}

func (h *ElectionHandler) Priority() int { return 20 }

type constituencyIn struct {
	Name string `json:"name"`
}

type createElectionIn struct {
	Title          string           `json:"title"`
	Description    string           `json:"description"`
	StartDate      flexTime         `json:"startDate"`
	EndDate        flexTime         `json:"endDate"`
	Constituencies []constituencyIn `json:"constituencies"`
}

type statusIn struct {
	Status string `json:"status"`
}

type candidateIn struct {
	CandidateID      string `json:"candidateId"`
	ConstituencyName string `json:"constituencyName"`
}

type registerVoterIn struct {
	VoterID          string `json:"voterId"`
	ConstituencyName string `json:"constituencyName"`
}

type registerVoterOut struct {
	Message  string           `json:"message"`
	Election *domain.Election `json:"election"`
}

func (h *ElectionHandler) MountAPI(pub, _ *gin.RouterGroup) {
	p := ez.New(pub)

	ez.RegisterAction(p, ez.Action[struct{}, []domain.Election]{
		Method: http.MethodGet,
		Path:   "/elections",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) ([]domain.Election, error) {
			return h.svc.List(c.Request.Context())
		},
	})

	ez.RegisterAction(p, ez.Action[struct{}, *domain.Election]{
		Method: http.MethodGet,
		Path:   "/elections/:id",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.Election, error) {
			return h.svc.Get(c.Request.Context(), c.Param("id"))
		},
	})

	ez.RegisterAction(p, ez.Action[struct{}, *domain.Results]{
		Method: http.MethodGet,
		Path:   "/elections/:id/results",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.Results, error) {
			return h.svc.Results(c.Request.Context(), c.Param("id"))
		},
	})
}

func (h *ElectionHandler) MountAdmin(admin *gin.RouterGroup) {
	a := ez.New(admin)
	roles := []string{string(domain.RoleAdmin)}

	ez.RegisterAction(a, ez.Action[createElectionIn, *domain.Election]{
		Method: http.MethodPost,
		Path:   "/elections",
		Binder: ez.BindJSON,
		Auth:   true,
		Roles:  roles,
		Handler: func(c *gin.Context, in *createElectionIn) (*domain.Election, error) {
			names := make([]string, 0, len(in.Constituencies))
			for _, ci := range in.Constituencies {
				names = append(names, ci.Name)
			}
			return h.svc.Create(c.Request.Context(), ez.Principal(c), service.CreateElectionInput{
				Title:          in.Title,
				Description:    in.Description,
				StartDate:      in.StartDate.Time,
				EndDate:        in.EndDate.Time,
				Constituencies: names,
			})
		},
	})

	ez.RegisterAction(a, ez.Action[struct{}, message]{
		Method: http.MethodDelete,
		Path:   "/elections/:id",
		Binder: ez.BindNone,
		Auth:   true,
		Roles:  roles,
		Handler: func(c *gin.Context, _ *struct{}) (message, error) {
			if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
				return message{}, err
			}
			return message{Message: "Election removed"}, nil
		},
	})

	ez.RegisterAction(a, ez.Action[statusIn, *domain.Election]{
		Method: http.MethodPut,
		Path:   "/elections/:id/status",
		Binder: ez.BindJSON,
		Auth:   true,
		Roles:  roles,
		Handler: func(c *gin.Context, in *statusIn) (*domain.Election, error) {
			return h.svc.UpdateStatus(c.Request.Context(), c.Param("id"), in.Status)
		},
	})

	ez.RegisterAction(a, ez.Action[candidateIn, *domain.Election]{
		Method: http.MethodPut,
		Path:   "/elections/:id/candidates",
		Binder: ez.BindJSON,
		Auth:   true,
		Roles:  roles,
		Handler: func(c *gin.Context, in *candidateIn) (*domain.Election, error) {
			return h.svc.AddCandidate(c.Request.Context(), c.Param("id"), in.CandidateID, in.ConstituencyName)
		},
	})

	ez.RegisterAction(a, ez.Action[candidateIn, *domain.Election]{
		Method: http.MethodDelete,
		Path:   "/elections/:id/candidates",
		Binder: ez.BindJSON,
		Auth:   true,
		Roles:  roles,
		Handler: func(c *gin.Context, in *candidateIn) (*domain.Election, error) {
			return h.svc.RemoveCandidate(c.Request.Context(), c.Param("id"), in.CandidateID, in.ConstituencyName)
		},
	})

	ez.RegisterAction(a, ez.Action[registerVoterIn, registerVoterOut]{
		Method: http.MethodPost,
		Path:   "/elections/:id/register",
		Binder: ez.BindJSON,
		Auth:   true,
		Roles:  roles,
		Handler: func(c *gin.Context, in *registerVoterIn) (registerVoterOut, error) {
			msg, e, err := h.svc.RegisterVoter(c.Request.Context(), c.Param("id"), in.VoterID, in.ConstituencyName)
			if err != nil {
				return registerVoterOut{}, err
			}
			return registerVoterOut{Message: msg, Election: e}, nil
		},
	})

	ez.RegisterAction(a, ez.Action[struct{}, *domain.VoteStatistics]{
		Method: http.MethodGet,
		Path:   "/votes/stats/:electionId",
		Binder: ez.BindNone,
		Auth:   true,
		Roles:  roles,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.VoteStatistics, error) {
			return h.svc.Statistics(c.Request.Context(), c.Param("electionId"))
		},
	})
}
