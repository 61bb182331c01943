package handler

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tangle-wallet/internal/handler/request"
	"tangle-wallet/internal/handler/response"
	"tangle-wallet/internal/service"
	"tangle-wallet/pkg/errno"
	"tangle-wallet/pkg/logger"
	"tangle-wallet/pkg/validator"
)

type WalletHandler struct {
	svc service.WalletService
}

func NewWalletHandler(svc service.WalletService) *WalletHandler {
	return &WalletHandler{svc: svc}
}

// UsedAddresses 已使用地址
// @Summary 扫描已使用地址
// @Description 从 start 开始按索引扫描, 遇到第一个未使用地址停止
// @Tags Address
// @Produce json
// @Param start query int false "起始索引"
// @Param security query int false "安全等级 1-3"
// @Success 200 {object} response.Response
// @Router /api/v1/addresses/used [get]
func (h *WalletHandler) UsedAddresses(c *gin.Context) {
	var q request.AddressQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, bindError(err))
		return
	}

	results, err := h.svc.UsedAddresses(c.Request.Context(), q.Start, q.Security)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, results)
}

// NewAddress 第一个未使用地址
// @Summary 获取新地址
// @Tags Address
// @Produce json
// @Param start query int false "起始索引"
// @Param security query int false "安全等级 1-3"
// @Success 200 {object} response.Response
// @Router /api/v1/addresses/new [get]
func (h *WalletHandler) NewAddress(c *gin.Context) {
	var q request.AddressQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, bindError(err))
		return
	}

	addr, err := h.svc.NewAddress(c.Request.Context(), q.Start, q.Security)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, addr)
}

// Transfers 钱包相关的 bundle
// @Summary 查询转账记录
// @Tags Transfer
// @Produce json
// @Param start query int false "起始索引"
// @Param stop query int false "结束索引 (不含), 0 表示扫描到未使用地址"
// @Param security query int false "安全等级 1-3"
// @Param inclusion_states query bool false "是否查询确认状态"
// @Success 200 {object} response.Response
// @Router /api/v1/transfers [get]
func (h *WalletHandler) Transfers(c *gin.Context) {
	var q request.TransfersQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, bindError(err))
		return
	}

	bundles, err := h.svc.Transfers(c.Request.Context(), q.Start, q.Stop, q.Security, q.InclusionStates)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, bundles)
}

// Account 账户汇总
// @Summary 查询账户数据
// @Tags Transfer
// @Produce json
// @Param start query int false "起始索引"
// @Param stop query int false "结束索引 (不含)"
// @Param security query int false "安全等级 1-3"
// @Param inclusion_states query bool false "是否查询确认状态"
// @Success 200 {object} response.Response
// @Router /api/v1/account [get]
func (h *WalletHandler) Account(c *gin.Context) {
	var q request.TransfersQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, bindError(err))
		return
	}

	data, err := h.svc.AccountData(c.Request.Context(), q.Start, q.Stop, q.Security, q.InclusionStates)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, data)
}

// ResolveBundles 按交易哈希解析 bundle
// @Summary 解析 bundle
// @Tags Transfer
// @Accept json
// @Produce json
// @Param request body request.ResolveBundlesRequest true "交易哈希"
// @Success 200 {object} response.Response
// @Router /api/v1/bundles [post]
func (h *WalletHandler) ResolveBundles(c *gin.Context) {
	var req request.ResolveBundlesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}

	bundles, err := h.svc.ResolveBundles(c.Request.Context(), req.Hashes, req.InclusionStates)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, bundles)
}

// Sync 同步已使用地址
// @Summary 同步已使用地址
// @Description 从上次同步的位置继续扫描, 结果写入数据库并发送 address_used 事件
// @Tags Address
// @Produce json
// @Param security query int false "安全等级 1-3"
// @Success 200 {object} response.Response
// @Router /api/v1/addresses/sync [post]
func (h *WalletHandler) Sync(c *gin.Context) {
	var q request.SyncQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, bindError(err))
		return
	}

	result, err := h.svc.Sync(c.Request.Context(), q.Security)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, result)
}

// bindError 保留 ErrBind 的错误码, 消息换成具体的校验失败原因
func bindError(err error) error {
	return errno.Errno{Code: errno.ErrBind.Code, Message: validator.GetErrorMsg(err)}
}

// fail 业务错误原样返回; 其余错误来自节点, 统一归为节点不可用
func fail(c *gin.Context, err error) {
	var e errno.Errno
	if errors.As(err, &e) {
		response.Error(c, err)
		return
	}
	logger.Error("请求处理失败", zap.String("path", c.FullPath()), zap.Error(err))
	response.Error(c, fmt.Errorf("%w: %v", errno.ErrLedgerUnavailable, err))
}
