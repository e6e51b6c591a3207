package server

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"

	"escrow-program-sol/internal/logic/progress"
	"escrow-program-sol/internal/pkg/logger"
	"escrow-program-sol/internal/program/token"
	"escrow-program-sol/internal/runtime"
	"escrow-program-sol/internal/svc"
	"escrow-program-sol/internal/types"

	"github.com/zeromicro/go-zero/rest"
	"github.com/zeromicro/go-zero/rest/httpx"
)

// ApiServer 对外提供交易提交与托管查询的 REST 接口
type ApiServer struct {
	sc     *svc.ServiceContext
	server *rest.Server
}

// NewApiServer 创建 REST 服务并注册路由
func NewApiServer(sc *svc.ServiceContext) *ApiServer {
	server := rest.MustNewServer(rest.RestConf{
		Host: sc.Config.RestConf.Host,
		Port: sc.Config.RestConf.Port,
	})

	s := &ApiServer{sc: sc, server: server}
	server.AddRoutes([]rest.Route{
		{Method: http.MethodPost, Path: "/v1/transactions", Handler: s.submitTxHandler},
		{Method: http.MethodGet, Path: "/v1/escrows", Handler: s.listEscrowsHandler},
		{Method: http.MethodGet, Path: "/v1/escrows/:address", Handler: s.getEscrowHandler},
		{Method: http.MethodGet, Path: "/v1/accounts/:address", Handler: s.getAccountHandler},
	})
	return s
}

// Start 在后台启动 HTTP 监听（立即返回，与 ServiceGroup 的启动方式配合）
func (s *ApiServer) Start() {
	logger.Infof("[api] REST 服务启动: %s:%d", s.sc.Config.RestConf.Host, s.sc.Config.RestConf.Port)
	go s.server.Start()
}

func (s *ApiServer) Stop() {
	s.server.Stop()
}

// submitTxHandler 执行一笔交易：成功则提取事件，推给 publisher 异步发布
func (s *ApiServer) submitTxHandler(w http.ResponseWriter, r *http.Request) {
	var req SubmitTxRequest
	if err := httpx.Parse(r, &req); err != nil {
		httpx.WriteJson(w, http.StatusBadRequest, &ErrorResponse{Error: err.Error()})
		return
	}

	tx, err := buildTransaction(&req)
	if err != nil {
		httpx.WriteJson(w, http.StatusBadRequest, &ErrorResponse{Error: err.Error()})
		return
	}

	if err := s.sc.Bank.ExecuteTransaction(tx); err != nil {
		status := http.StatusUnprocessableEntity
		if errors.Is(err, runtime.ErrDuplicateTransaction) {
			status = http.StatusConflict
		}
		logger.Infof("[api] 交易执行失败 sig=%s: %v", tx.Signature, err)
		httpx.WriteJson(w, status, &SubmitTxResponse{
			Signature: req.Signature,
			Status:    "failed",
			Error:     err.Error(),
		})
		return
	}

	// 提交成功后提取生命周期事件：缓存同步更新，Kafka/Redis 交给 publisher
	if evs := s.sc.Registry.ExtractEvents(tx); len(evs) > 0 {
		for _, ev := range evs {
			s.sc.EscrowCache.ApplyEvent(ev)
		}
		select {
		case s.sc.EventCh <- evs:
		default:
			// 事件通道打满说明下游长期不可用，丢弃并告警，不阻塞交易提交
			logger.Errorf("[api] 事件通道已满, 丢弃 %d 条事件 sig=%s", len(evs), tx.Signature)
		}
	}

	httpx.OkJson(w, &SubmitTxResponse{Signature: req.Signature, Status: "ok"})
}

// listEscrowsHandler 返回全部 open 托管
func (s *ApiServer) listEscrowsHandler(w http.ResponseWriter, r *http.Request) {
	open := s.sc.EscrowCache.List()
	resp := &ListEscrowsResponse{
		Total:   len(open),
		Escrows: make([]EscrowBody, 0, len(open)),
	}
	for _, e := range open {
		resp.Escrows = append(resp.Escrows, EscrowBody{
			Record:         e.Record.String(),
			Status:         "open",
			Initializer:    e.Initializer.String(),
			TempAccount:    e.TempAccount.String(),
			ReceiveAccount: e.ReceiveAccount.String(),
			ExpectedAmount: e.ExpectedAmount,
			CreatedAt:      e.CreatedAt,
		})
	}
	httpx.OkJson(w, resp)
}

// getEscrowHandler 查询单笔托管：open 的走缓存，已终结的从 Redis 查状态
func (s *ApiServer) getEscrowHandler(w http.ResponseWriter, r *http.Request) {
	var req AddressRequest
	if err := httpx.Parse(r, &req); err != nil {
		httpx.WriteJson(w, http.StatusBadRequest, &ErrorResponse{Error: err.Error()})
		return
	}
	record, err := types.TryPubkeyFromBase58(req.Address)
	if err != nil {
		httpx.WriteJson(w, http.StatusBadRequest, &ErrorResponse{Error: err.Error()})
		return
	}

	if e, ok := s.sc.EscrowCache.Get(record); ok {
		httpx.OkJson(w, &EscrowBody{
			Record:         e.Record.String(),
			Status:         "open",
			Initializer:    e.Initializer.String(),
			TempAccount:    e.TempAccount.String(),
			ReceiveAccount: e.ReceiveAccount.String(),
			ExpectedAmount: e.ExpectedAmount,
			CreatedAt:      e.CreatedAt,
		})
		return
	}

	status, err := s.sc.StatusStore.GetStatus(r.Context(), record)
	if err != nil {
		logger.Errorf("[api] 查询托管状态失败 record=%s: %v", record, err)
		httpx.WriteJson(w, http.StatusInternalServerError, &ErrorResponse{Error: "status store unavailable"})
		return
	}
	if status == progress.EscrowUnknown {
		httpx.WriteJson(w, http.StatusNotFound, &ErrorResponse{Error: "escrow not found"})
		return
	}
	httpx.OkJson(w, &EscrowBody{Record: record.String(), Status: status.String()})
}

// getAccountHandler 查询账本中的账户原始状态
func (s *ApiServer) getAccountHandler(w http.ResponseWriter, r *http.Request) {
	var req AddressRequest
	if err := httpx.Parse(r, &req); err != nil {
		httpx.WriteJson(w, http.StatusBadRequest, &ErrorResponse{Error: err.Error()})
		return
	}
	key, err := types.TryPubkeyFromBase58(req.Address)
	if err != nil {
		httpx.WriteJson(w, http.StatusBadRequest, &ErrorResponse{Error: err.Error()})
		return
	}

	acc, ok := s.sc.Bank.GetAccount(key)
	if !ok {
		httpx.WriteJson(w, http.StatusNotFound, &ErrorResponse{Error: "account not found"})
		return
	}

	resp := &AccountResponse{
		Address:  key.String(),
		Lamports: acc.Lamports,
		Owner:    acc.Owner.String(),
	}
	if len(acc.Data) > 0 {
		resp.Data = base64.StdEncoding.EncodeToString(acc.Data)
	}
	// token 账户额外给出解码视图，省去调用方手动解析
	if state, err := token.UnpackAccount(acc.Data); err == nil && state.State == token.StateInitialized {
		resp.Token = &TokenAccountBody{
			Mint:   state.Mint.String(),
			Owner:  state.Owner.String(),
			Amount: state.Amount,
		}
	}
	httpx.OkJson(w, resp)
}

// buildTransaction 将请求体转换为运行时交易结构
func buildTransaction(req *SubmitTxRequest) (*runtime.Transaction, error) {
	sig, err := types.HashFromBase58(req.Signature)
	if err != nil {
		return nil, fmt.Errorf("signature: %w", err)
	}
	if len(req.Instructions) == 0 {
		return nil, fmt.Errorf("transaction has no instructions")
	}

	signers := make([]types.Pubkey, 0, len(req.Signers))
	for i, s := range req.Signers {
		pk, err := types.TryPubkeyFromBase58(s)
		if err != nil {
			return nil, fmt.Errorf("signers[%d]: %w", i, err)
		}
		signers = append(signers, pk)
	}

	instructions := make([]runtime.Instruction, 0, len(req.Instructions))
	for i, body := range req.Instructions {
		programID, err := types.TryPubkeyFromBase58(body.ProgramID)
		if err != nil {
			return nil, fmt.Errorf("instructions[%d].program_id: %w", i, err)
		}
		data, err := base64.StdEncoding.DecodeString(body.Data)
		if err != nil {
			return nil, fmt.Errorf("instructions[%d].data: %w", i, err)
		}
		metas := make([]runtime.AccountMeta, 0, len(body.Accounts))
		for j, m := range body.Accounts {
			pk, err := types.TryPubkeyFromBase58(m.Pubkey)
			if err != nil {
				return nil, fmt.Errorf("instructions[%d].accounts[%d]: %w", i, j, err)
			}
			metas = append(metas, runtime.AccountMeta{
				Pubkey:     pk,
				IsSigner:   m.Signer,
				IsWritable: m.Writable,
			})
		}
		instructions = append(instructions, runtime.Instruction{
			ProgramID: programID,
			Accounts:  metas,
			Data:      data,
		})
	}

	return &runtime.Transaction{
		Signature:    sig,
		Signers:      signers,
		Instructions: instructions,
	}, nil
}
