package http

import (
	"errors"
	"net/http"
	"strconv"

	"linkedin-publisher/domain/model"
	"linkedin-publisher/infrastructure/clients/linkedin"
	"linkedin-publisher/infrastructure/logger"
	"linkedin-publisher/usecase"

	"github.com/gin-gonic/gin"
)

type ILinkedInHandler interface {
	Status(ctx *gin.Context)
	CreatePost(ctx *gin.Context)
	GetPost(ctx *gin.Context)
	ListComments(ctx *gin.Context)
	CreateComment(ctx *gin.Context)
	ReplyComment(ctx *gin.Context)
	History(ctx *gin.Context)
}

type LinkedInHandler struct {
	status   usecase.IStatusUsecase
	publish  usecase.IPublishUsecase
	comments usecase.ICommentUsecase
}

func NewLinkedInHandler(status usecase.IStatusUsecase, publish usecase.IPublishUsecase, comments usecase.ICommentUsecase) ILinkedInHandler {
	return &LinkedInHandler{status: status, publish: publish, comments: comments}
}

type postRequest struct {
	Variant    string             `json:"variant" binding:"required"`
	Text       string             `json:"text"`
	Images     []model.ImageInput `json:"images"`
	ImageTitle string             `json:"image_title"`
	Article    *model.ArticleLink `json:"article"`
	Visibility string             `json:"visibility"`
	Preview    bool               `json:"preview"`
}

type commentRequest struct {
	Text string `json:"text" binding:"required"`
}

type replyRequest struct {
	PostURN    string `json:"post_urn" binding:"required"`
	CommentURN string `json:"comment_urn" binding:"required"`
	Text       string `json:"text" binding:"required"`
}

func (h *LinkedInHandler) Status(ctx *gin.Context) {
	verify, _ := strconv.ParseBool(ctx.Query("verify"))
	st, err := h.status.Check(ctx.Request.Context(), verify)
	if err != nil {
		h.fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"status": st, "summary": st.Summary()})
}

func (h *LinkedInHandler) CreatePost(ctx *gin.Context) {
	var req postRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	res, err := h.publish.Publish(ctx.Request.Context(), model.PostRequest{
		Variant:    model.PostVariant(req.Variant),
		Text:       req.Text,
		Images:     req.Images,
		ImageTitle: req.ImageTitle,
		Article:    req.Article,
		Visibility: model.Visibility(req.Visibility),
		Preview:    req.Preview,
	})
	if err != nil {
		h.fail(ctx, err)
		return
	}
	code := http.StatusCreated
	body := gin.H{"result": res}
	if res.Preview {
		code = http.StatusOK
		body["compose_url"] = model.ComposeURL
	}
	if res.LengthWarn != nil {
		body["warning"] = res.LengthWarn.Error()
	}
	ctx.JSON(code, body)
}

func (h *LinkedInHandler) GetPost(ctx *gin.Context) {
	post, err := h.publish.GetPost(ctx.Request.Context(), ctx.Param("urn"))
	if err != nil {
		h.fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"post": post})
}

func (h *LinkedInHandler) ListComments(ctx *gin.Context) {
	start, _ := strconv.Atoi(ctx.DefaultQuery("start", "0"))
	count, _ := strconv.Atoi(ctx.DefaultQuery("count", strconv.Itoa(usecase.DefaultCommentPageSize)))
	page, err := h.comments.List(ctx.Request.Context(), ctx.Param("urn"), start, count)
	if err != nil {
		h.fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"page": page})
}

func (h *LinkedInHandler) CreateComment(ctx *gin.Context) {
	var req commentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	ref, err := h.comments.Create(ctx.Request.Context(), ctx.Param("urn"), req.Text)
	if err != nil {
		h.fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"comment": ref})
}

func (h *LinkedInHandler) ReplyComment(ctx *gin.Context) {
	var req replyRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	ref, err := h.comments.Reply(ctx.Request.Context(), req.PostURN, req.CommentURN, req.Text)
	if err != nil {
		h.fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"comment": ref})
}

func (h *LinkedInHandler) History(ctx *gin.Context) {
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	list, err := h.publish.History(ctx.Request.Context(), limit)
	if err != nil {
		h.fail(ctx, err)
		return
	}
	if list == nil {
		list = []*model.PublishRecord{}
	}
	ctx.JSON(http.StatusOK, gin.H{"records": list})
}

func (h *LinkedInHandler) fail(ctx *gin.Context, err error) {
	code := statusFor(err)
	entry := logger.GetLogger().WithField("path", ctx.FullPath()).WithField("error", err.Error())
	if code >= 500 {
		entry.Error("bridge request failed")
	} else {
		entry.Warn("bridge request rejected")
	}
	ctx.JSON(code, gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrEmptyText),
		errors.Is(err, model.ErrImageCount),
		errors.Is(err, model.ErrMissingArticleURL),
		errors.Is(err, model.ErrInvalidVisibility),
		errors.Is(err, model.ErrUnknownPostVariant),
		errors.Is(err, usecase.ErrImageNotFound),
		errors.Is(err, usecase.ErrEmptyComment),
		errors.Is(err, usecase.ErrMissingURN):
		return http.StatusBadRequest
	case errors.Is(err, usecase.ErrNotAuthenticated),
		errors.Is(err, usecase.ErrCredentialExpired),
		errors.Is(err, linkedin.ErrTokenExpired):
		return http.StatusUnauthorized
	case errors.Is(err, usecase.ErrElevatedAccessRequired),
		errors.Is(err, linkedin.ErrPermissionGated),
		errors.Is(err, linkedin.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, linkedin.ErrInvalidPayload):
		return http.StatusUnprocessableEntity
	case errors.Is(err, linkedin.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, usecase.ErrHistoryDisabled):
		return http.StatusNotImplemented
	case errors.Is(err, linkedin.ErrServer),
		errors.Is(err, linkedin.ErrTransport):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
