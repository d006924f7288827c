package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"election-commission/internal/domain"
	"election-commission/internal/service"
	"election-commission/internal/transport/http/ez"
)

type VoteHandler struct{ svc *service.VoteService }

func NewVoteHandler(svc *service.VoteService) *VoteHandler { return &VoteHandler{svc: svc} }

func (h *VoteHandler) Priority() int { return 30 }

type castIn struct {
	ElectionID  string `json:"electionId"`
	CandidateID string `json:"candidateId"`
}

type castOut struct {
	Message string       `json:"message"`
	Vote    *domain.Vote `json:"vote"`
}

// 投票人永远是调用者本人
func (h *VoteHandler) MountAPI(_, authed *gin.RouterGroup) {
	ez.RegisterAction(ez.New(authed), ez.Action[castIn, castOut]{
		Method: http.MethodPost,
		Path:   "/votes",
		Binder: ez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, in *castIn) (castOut, error) {
			v, err := h.svc.Cast(c.Request.Context(), ez.Principal(c), in.ElectionID, in.CandidateID)
			if err != nil {
				return castOut{}, err
			}
			return castOut{Message: "Vote cast successfully", Vote: v}, nil
		},
	})
}
