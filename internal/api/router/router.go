package router

import (
	"context"
	"errors"
	"strconv"

	"skillfit-go/internal/api/handler"
	"skillfit-go/internal/scraper"
	"skillfit-go/internal/simulation"
	"skillfit-go/internal/storage"
	"skillfit-go/internal/types"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

// Handlers 路由依赖的处理器集合
type Handlers struct {
	Job        *handler.JobHandler
	Vector     *handler.VectorHandler
	Profile    *handler.ProfileHandler
	Simulation *handler.SimulationHandler
}

// statusFor 把业务错误映射为HTTP状态码
func statusFor(err error) int {
	switch {
	case errors.Is(err, handler.ErrInvalidRequest):
		return consts.StatusBadRequest
	case errors.Is(err, handler.ErrTaskInProgress):
		return consts.StatusBadRequest
	case errors.Is(err, scraper.ErrTaskNotFound),
		errors.Is(err, handler.ErrResultNotFound),
		errors.Is(err, storage.ErrProfileNotFound),
		errors.Is(err, storage.ErrSearchNotFound),
		errors.Is(err, simulation.ErrNoJobs),
		errors.Is(err, simulation.ErrNoCachedVectors):
		return consts.StatusNotFound
	default:
		return consts.StatusInternalServerError
	}
}

func abortWith(ctx *app.RequestContext, err error) {
	ctx.JSON(statusFor(err), utils.H{"error": err.Error()})
}

// RegisterRoutes 注册API路由
func RegisterRoutes(h *server.Hertz, handlers Handlers) {
	api := h.Group("/api/v1")

	jobs := api.Group("/jobs")

	jobs.POST("/search", func(c context.Context, ctx *app.RequestContext) {
		var req types.SearchRequest
		if err := ctx.BindJSON(&req); err != nil {
			ctx.JSON(consts.StatusBadRequest, utils.H{"error": "请求体解析失败: " + err.Error()})
			return
		}
		resp, err := handlers.Job.StartSearch(c, &req)
		if err != nil {
			abortWith(ctx, err)
			return
		}
		ctx.JSON(consts.StatusAccepted, resp)
	})

	jobs.GET("/status/:task_id", func(c context.Context, ctx *app.RequestContext) {
		resp, err := handlers.Job.GetStatus(c, ctx.Param("task_id"))
		if err != nil {
			abortWith(ctx, err)
			return
		}
		ctx.JSON(consts.StatusOK, resp)
	})

	jobs.GET("/results/:task_id", func(c context.Context, ctx *app.RequestContext) {
		artifact, err := handlers.Job.GetResults(c, ctx.Param("task_id"))
		if err != nil {
			abortWith(ctx, err)
			return
		}
		ctx.JSON(consts.StatusOK, artifact)
	})

	jobs.GET("/analytics/:task_id", func(c context.Context, ctx *app.RequestContext) {
		result, err := handlers.Job.GetAnalytics(c, ctx.Param("task_id"))
		if err != nil {
			abortWith(ctx, err)
			return
		}
		ctx.JSON(consts.StatusOK, result)
	})

	jobs.POST("/simulate/:search_id", func(c context.Context, ctx *app.RequestContext) {
		var req types.SimulationRequest
		if err := ctx.BindJSON(&req); err != nil {
			ctx.JSON(consts.StatusBadRequest, utils.H{"error": "请求体解析失败: " + err.Error()})
			return
		}
		report, err := handlers.Simulation.Simulate(c, ctx.Param("search_id"), &req)
		if err != nil {
			abortWith(ctx, err)
			return
		}
		ctx.JSON(consts.StatusOK, report)
	})

	api.POST("/vectors/calculate-score", func(c context.Context, ctx *app.RequestContext) {
		var req types.VectorScoreRequest
		if err := ctx.BindJSON(&req); err != nil {
			ctx.JSON(consts.StatusBadRequest, utils.H{"error": "请求体解析失败: " + err.Error()})
			return
		}
		resp, err := handlers.Vector.CalculateScore(&req)
		if err != nil {
			abortWith(ctx, err)
			return
		}
		ctx.JSON(consts.StatusOK, resp)
	})

	profiles := api.Group("/profiles")

	profiles.POST("", func(c context.Context, ctx *app.RequestContext) {
		var req handler.CreateProfileRequest
		if err := ctx.BindJSON(&req); err != nil {
			ctx.JSON(consts.StatusBadRequest, utils.H{"error": "请求体解析失败: " + err.Error()})
			return
		}
		resp, err := handlers.Profile.CreateProfile(c, &req)
		if err != nil {
			abortWith(ctx, err)
			return
		}
		ctx.JSON(consts.StatusCreated, resp)
	})

	profiles.PUT("/:id/vectors", func(c context.Context, ctx *app.RequestContext) {
		var req handler.ConfirmSkillsRequest
		if err := ctx.BindJSON(&req); err != nil {
			ctx.JSON(consts.StatusBadRequest, utils.H{"error": "请求体解析失败: " + err.Error()})
			return
		}
		profile, err := handlers.Profile.ConfirmSkills(c, ctx.Param("id"), &req)
		if err != nil {
			abortWith(ctx, err)
			return
		}
		ctx.JSON(consts.StatusOK, utils.H{
			"profile_id":       profile.ID,
			"confirmed_skills": profile.ConfirmedSkills,
		})
	})

	profiles.GET("/:id", func(c context.Context, ctx *app.RequestContext) {
		profile, err := handlers.Profile.GetProfile(c, ctx.Param("id"))
		if err != nil {
			abortWith(ctx, err)
			return
		}
		ctx.JSON(consts.StatusOK, profile)
	})

	api.GET("/history", func(c context.Context, ctx *app.RequestContext) {
		limit, _ := strconv.Atoi(ctx.Query("limit"))
		items, err := handlers.Job.GetHistory(c, limit)
		if err != nil {
			abortWith(ctx, err)
			return
		}
		ctx.JSON(consts.StatusOK, items)
	})

	api.GET("/health", func(c context.Context, ctx *app.RequestContext) {
		ctx.JSON(consts.StatusOK, utils.H{"status": "ok"})
	})
}
