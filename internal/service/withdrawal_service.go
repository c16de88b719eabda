package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/settle-next/internal/constants"
	"github.com/settle-next/internal/logger"
	"github.com/settle-next/internal/models"
	"github.com/settle-next/internal/queue"
	"github.com/settle-next/internal/repository"
	"github.com/settle-next/internal/transfer"
	"github.com/settle-next/internal/transfer/wechatpay"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const transferPollBatchLimit = 50

// WithdrawalService 提现业务服务
// 提现金额在创建事务内从可用佣金转入冻结佣金，之后的每次状态迁移都在提现单行锁内完成；
// 转账网关配置与自动审核配置每次决策前重新读取，不做进程内缓存。
type WithdrawalService struct {
	repo           repository.WithdrawalRepository
	memberRepo     repository.MemberRepository
	auditRepo      repository.SettlementAuditLogRepository
	balanceService *BalanceService
	settingService *SettingService
	queueClient    *queue.Client

	// 测试替换入口，生产始终按设置构建微信网关
	gatewayFactory func(setting TransferGatewaySetting) (transfer.Gateway, error)
}

// NewWithdrawalService 创建提现服务
func NewWithdrawalService(
	repo repository.WithdrawalRepository,
	memberRepo repository.MemberRepository,
	auditRepo repository.SettlementAuditLogRepository,
	balanceService *BalanceService,
	settingService *SettingService,
	queueClient *queue.Client,
) *WithdrawalService {
	return &WithdrawalService{
		repo:           repo,
		memberRepo:     memberRepo,
		auditRepo:      auditRepo,
		balanceService: balanceService,
		settingService: settingService,
		queueClient:    queueClient,
		gatewayFactory: buildTransferGateway,
	}
}

// WithdrawalCreateInput 提现申请输入
type WithdrawalCreateInput struct {
	MemberID      uint         `json:"member_id"`
	Amount        models.Money `json:"amount"`
	AccountType   string       `json:"account_type"`
	AccountName   string       `json:"account_name"`
	AccountNumber string       `json:"account_number"`
	BankName      string       `json:"bank_name"`
}

// AdminOperator 审计用操作者信息
type AdminOperator struct {
	AdminID   uint
	Username  string
	RequestID string
}

// TransferResultNotice 网关转账结果（回调或主动查询）
type TransferResultNotice struct {
	OutBillNo  string
	BillNo     string
	State      string
	FailReason string
}

// Create 创建提现申请
// 余额预留与申请单落库在同一事务；自动审核通过后转账发起在事务提交后执行。
func (s *WithdrawalService) Create(input WithdrawalCreateInput) (*models.WithdrawalRequest, error) {
	amount := input.Amount.Decimal.Round(2)
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrWithdrawAmountInvalid
	}
	if err := validateWithdrawAccount(input); err != nil {
		return nil, err
	}

	member, err := s.memberRepo.GetByID(input.MemberID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, ErrMemberNotFound
	}
	if member.Status != constants.MemberStatusActive {
		return nil, ErrMemberDisabled
	}

	// 自动审核配置每次创建前重新读取
	withdrawSetting, err := s.settingService.GetWithdrawSetting()
	if err != nil {
		return nil, err
	}
	autoApprove := withdrawSetting.Enabled &&
		amount.LessThanOrEqual(withdrawSetting.MaxAmount.Decimal)

	now := time.Now()
	request := &models.WithdrawalRequest{
		WithdrawalNo:  generateWithdrawalNo(),
		MemberID:      input.MemberID,
		Amount:        models.NewMoneyFromDecimal(amount),
		AccountType:   strings.TrimSpace(input.AccountType),
		AccountName:   strings.TrimSpace(input.AccountName),
		AccountNumber: strings.TrimSpace(input.AccountNumber),
		BankName:      strings.TrimSpace(input.BankName),
		Status:        constants.WithdrawStatusPending,
	}
	if autoApprove {
		request.Status = constants.WithdrawStatusApproved
		request.AutoApproved = true
		request.ProcessedAt = &now
	}

	if err := s.repo.Transaction(func(tx *gorm.DB) error {
		if _, _, err := s.balanceService.MoveAvailableToFrozenInTx(tx, BalanceChangeInput{
			MemberID:  input.MemberID,
			Amount:    models.NewMoneyFromDecimal(amount),
			Reference: fmt.Sprintf("withdraw:%s:freeze", request.WithdrawalNo),
			Remark:    fmt.Sprintf("提现申请 %s 冻结", request.WithdrawalNo),
		}); err != nil {
			return err
		}
		return s.repo.WithTx(tx).Create(request)
	}); err != nil {
		return nil, err
	}

	if request.AutoApproved && request.AccountType == constants.WithdrawAccountTypeWechat {
		s.dispatchTransfer(request)
	}
	return request, nil
}

// Approve 管理员审核通过
// 微信账户在审核通过后发起网关转账，银行账户保持 approved 等待线下打款。
func (s *WithdrawalService) Approve(operator AdminOperator, id uint, remark string) (*models.WithdrawalRequest, error) {
	var result *models.WithdrawalRequest
	if err := s.repo.Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		row, err := repo.GetByIDForUpdate(id)
		if err != nil {
			return err
		}
		if row == nil {
			return ErrWithdrawNotFound
		}
		if row.Status != constants.WithdrawStatusPending {
			return ErrWithdrawStatusInvalid
		}

		fromStatus := row.Status
		now := time.Now()
		row.Status = constants.WithdrawStatusApproved
		row.AdminRemark = strings.TrimSpace(remark)
		row.ProcessedBy = &operator.AdminID
		row.ProcessedAt = &now
		row.UpdatedAt = now
		if err := repo.Update(row); err != nil {
			return err
		}
		if err := s.writeAudit(tx, operator, row, constants.SettlementActionApprove, fromStatus, row.Status, false, nil); err != nil {
			return err
		}
		result = row
		return nil
	}); err != nil {
		return nil, err
	}

	if result.AccountType == constants.WithdrawAccountTypeWechat {
		s.dispatchTransfer(result)
	}
	return result, nil
}

// Reject 管理员驳回，冻结金额原路退回可用佣金
// pending 状态可直接驳回；approved/processing 状态仅在网关转账失败后可驳回，
// 这是转账失败后把冻结资金退回会员的人工逆向操作。
func (s *WithdrawalService) Reject(operator AdminOperator, id uint, remark string) (*models.WithdrawalRequest, error) {
	var result *models.WithdrawalRequest
	if err := s.repo.Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		row, err := repo.GetByIDForUpdate(id)
		if err != nil {
			return err
		}
		if row == nil {
			return ErrWithdrawNotFound
		}
		if !rejectableWithdrawal(row) {
			return ErrWithdrawStatusInvalid
		}

		if _, _, err := s.balanceService.MoveFrozenToAvailableInTx(tx, BalanceChangeInput{
			MemberID:  row.MemberID,
			Amount:    row.Amount,
			Reference: fmt.Sprintf("withdraw:%s:unfreeze", row.WithdrawalNo),
			Remark:    fmt.Sprintf("提现申请 %s 驳回退回", row.WithdrawalNo),
		}); err != nil {
			return err
		}

		fromStatus := row.Status
		now := time.Now()
		row.Status = constants.WithdrawStatusRejected
		row.AdminRemark = strings.TrimSpace(remark)
		row.ProcessedBy = &operator.AdminID
		row.ProcessedAt = &now
		row.UpdatedAt = now
		if err := repo.Update(row); err != nil {
			return err
		}
		if err := s.writeAudit(tx, operator, row, constants.SettlementActionReject, fromStatus, row.Status, false, nil); err != nil {
			return err
		}
		result = row
		return nil
	}); err != nil {
		return nil, err
	}
	return result, nil
}

// Complete 管理员确认打款完成，冻结金额永久扣减
func (s *WithdrawalService) Complete(operator AdminOperator, id uint, remark string) (*models.WithdrawalRequest, error) {
	var result *models.WithdrawalRequest
	if err := s.repo.Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		row, err := repo.GetByIDForUpdate(id)
		if err != nil {
			return err
		}
		if row == nil {
			return ErrWithdrawNotFound
		}
		if row.Status != constants.WithdrawStatusApproved && row.Status != constants.WithdrawStatusProcessing {
			return ErrWithdrawStatusInvalid
		}

		fromStatus := row.Status
		if err := s.settleInTx(tx, repo, row, remark); err != nil {
			return err
		}
		if operator.AdminID != 0 {
			now := *row.CompletedAt
			row.ProcessedBy = &operator.AdminID
			row.ProcessedAt = &now
			if err := repo.Update(row); err != nil {
				return err
			}
		}
		if err := s.writeAudit(tx, operator, row, constants.SettlementActionComplete, fromStatus, row.Status, false, nil); err != nil {
			return err
		}
		result = row
		return nil
	}); err != nil {
		return nil, err
	}
	return result, nil
}

// CancelTransfer 撤销微信转账
// 已完成的转账撤销属于管理性覆盖，审计日志 override 置 true，金额直接返还可用佣金。
func (s *WithdrawalService) CancelTransfer(ctx context.Context, operator AdminOperator, id uint, remark string) (*models.WithdrawalRequest, error) {
	row, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, ErrWithdrawNotFound
	}
	if row.AccountType != constants.WithdrawAccountTypeWechat {
		return nil, ErrWithdrawNotCancellable
	}
	switch row.Status {
	case constants.WithdrawStatusApproved, constants.WithdrawStatusProcessing, constants.WithdrawStatusCompleted:
	default:
		return nil, ErrWithdrawStatusInvalid
	}
	if strings.TrimSpace(row.TransferBillNo) == "" {
		return nil, ErrWithdrawNotCancellable
	}

	gateway, err := s.resolveGateway()
	if err != nil {
		return nil, err
	}
	if _, err := gateway.CancelTransfer(ctx, row.WithdrawalNo); err != nil {
		if errors.Is(err, transfer.ErrNotCancellable) {
			return nil, ErrWithdrawNotCancellable
		}
		return nil, err
	}

	var result *models.WithdrawalRequest
	if err := s.repo.Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		locked, err := repo.GetByIDForUpdate(id)
		if err != nil {
			return err
		}
		if locked == nil {
			return ErrWithdrawNotFound
		}
		switch locked.Status {
		case constants.WithdrawStatusApproved, constants.WithdrawStatusProcessing, constants.WithdrawStatusCompleted:
		default:
			return ErrWithdrawStatusInvalid
		}

		fromStatus := locked.Status
		override := fromStatus == constants.WithdrawStatusCompleted
		if override {
			// 完成时冻结已扣减，返还走可用佣金入账
			if _, _, err := s.balanceService.RestoreAvailableInTx(tx, BalanceChangeInput{
				MemberID:  locked.MemberID,
				Amount:    locked.Amount,
				Reference: fmt.Sprintf("withdraw:%s:restore", locked.WithdrawalNo),
				Remark:    fmt.Sprintf("提现 %s 撤销转账返还", locked.WithdrawalNo),
			}); err != nil {
				return err
			}
		} else {
			if _, _, err := s.balanceService.MoveFrozenToAvailableInTx(tx, BalanceChangeInput{
				MemberID:  locked.MemberID,
				Amount:    locked.Amount,
				Reference: fmt.Sprintf("withdraw:%s:unfreeze", locked.WithdrawalNo),
				Remark:    fmt.Sprintf("提现 %s 撤销转账解冻", locked.WithdrawalNo),
			}); err != nil {
				return err
			}
		}

		now := time.Now()
		locked.Status = constants.WithdrawStatusCancelled
		if trimmed := strings.TrimSpace(remark); trimmed != "" {
			locked.AdminRemark = trimmed
		}
		locked.UpdatedAt = now
		if err := repo.Update(locked); err != nil {
			return err
		}

		detail := models.JSON{
			"transfer_bill_no": locked.TransferBillNo,
		}
		if err := s.writeAudit(tx, operator, locked, constants.SettlementActionCancelTransfer, fromStatus, locked.Status, override, detail); err != nil {
			return err
		}
		result = locked
		return nil
	}); err != nil {
		return nil, err
	}
	return result, nil
}

// InitiateApprovedTransfer 对已审核的微信提现发起网关转账
func (s *WithdrawalService) InitiateApprovedTransfer(ctx context.Context, id uint) error {
	row, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if row == nil {
		return ErrWithdrawNotFound
	}
	if row.AccountType != constants.WithdrawAccountTypeWechat {
		return ErrWithdrawAccountInvalid
	}
	if row.Status != constants.WithdrawStatusApproved {
		return ErrWithdrawStatusInvalid
	}
	if strings.TrimSpace(row.TransferBillNo) != "" {
		return nil
	}

	gateway, err := s.resolveGateway()
	if err != nil {
		return s.recordInitiateFailure(row, err)
	}

	initiated, err := gateway.InitiateTransfer(ctx, transfer.InitiateInput{
		OutBillNo: row.WithdrawalNo,
		OpenID:    row.AccountNumber,
		Amount:    row.Amount.Decimal.StringFixed(2),
		Remark:    fmt.Sprintf("佣金提现 %s", row.WithdrawalNo),
	})
	if err != nil {
		return s.recordInitiateFailure(row, err)
	}

	return s.repo.Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		locked, err := repo.GetByIDForUpdate(id)
		if err != nil {
			return err
		}
		if locked == nil {
			return ErrWithdrawNotFound
		}
		if locked.Status != constants.WithdrawStatusApproved || strings.TrimSpace(locked.TransferBillNo) != "" {
			return nil
		}
		locked.TransferBillNo = initiated.BillNo
		locked.Status = constants.WithdrawStatusProcessing
		locked.UpdatedAt = time.Now()
		return repo.Update(locked)
	})
}

// HandleTransferResult 处理网关转账结果（回调或轮询），重复投递不产生二次变更
func (s *WithdrawalService) HandleTransferResult(notice TransferResultNotice) error {
	outBillNo := strings.TrimSpace(notice.OutBillNo)
	if outBillNo == "" {
		return ErrWithdrawNotFound
	}
	row, err := s.repo.GetByWithdrawalNo(outBillNo)
	if err != nil {
		return err
	}
	if row == nil {
		return ErrWithdrawNotFound
	}

	return s.repo.Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		locked, err := repo.GetByIDForUpdate(row.ID)
		if err != nil {
			return err
		}
		if locked == nil {
			return ErrWithdrawNotFound
		}

		switch locked.Status {
		case constants.WithdrawStatusCompleted, constants.WithdrawStatusCancelled, constants.WithdrawStatusRejected:
			// 终态重复通知直接忽略
			return nil
		}

		if billNo := strings.TrimSpace(notice.BillNo); billNo != "" && locked.TransferBillNo == "" {
			locked.TransferBillNo = billNo
		}

		switch notice.State {
		case constants.TransferBillStateSuccess:
			return s.settleInTx(tx, repo, locked, "")
		case constants.TransferBillStateFail:
			return s.failTransferInTx(repo, locked, notice.FailReason)
		case constants.TransferBillStateCancelled:
			if _, _, err := s.balanceService.MoveFrozenToAvailableInTx(tx, BalanceChangeInput{
				MemberID:  locked.MemberID,
				Amount:    locked.Amount,
				Reference: fmt.Sprintf("withdraw:%s:unfreeze", locked.WithdrawalNo),
				Remark:    fmt.Sprintf("提现 %s 网关撤销解冻", locked.WithdrawalNo),
			}); err != nil {
				return err
			}
			locked.Status = constants.WithdrawStatusCancelled
			locked.UpdatedAt = time.Now()
			return repo.Update(locked)
		case constants.TransferBillStateAccepted,
			constants.TransferBillStateProcessing,
			constants.TransferBillStateWaitUserConfirm,
			constants.TransferBillStateTransfering,
			constants.TransferBillStateCanceling:
			if locked.Status == constants.WithdrawStatusApproved {
				locked.Status = constants.WithdrawStatusProcessing
			}
			locked.UpdatedAt = time.Now()
			return repo.Update(locked)
		default:
			return fmt.Errorf("%w: state %s", ErrWithdrawStatusInvalid, notice.State)
		}
	})
}

// PollProcessingTransfers 主动查询进行中的网关转账单并落地结果
func (s *WithdrawalService) PollProcessingTransfers(ctx context.Context) error {
	rows, err := s.repo.ListProcessingWithBillNo(transferPollBatchLimit)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}

	gateway, err := s.resolveGateway()
	if err != nil {
		if errors.Is(err, ErrTransferGatewayDisabled) {
			return nil
		}
		return err
	}

	for i := range rows {
		row := rows[i]
		queried, err := gateway.QueryTransfer(ctx, row.WithdrawalNo)
		if err != nil {
			logger.Warnw("withdraw_transfer_poll_failed",
				"withdrawal_no", row.WithdrawalNo,
				"error", err.Error(),
			)
			continue
		}
		if err := s.HandleTransferResult(TransferResultNotice{
			OutBillNo:  row.WithdrawalNo,
			BillNo:     queried.BillNo,
			State:      queried.State,
			FailReason: queried.FailReason,
		}); err != nil {
			logger.Warnw("withdraw_transfer_result_apply_failed",
				"withdrawal_no", row.WithdrawalNo,
				"error", err.Error(),
			)
		}
	}
	return nil
}

// VerifyTransferWebhook 验签并解密网关转账回调
func (s *WithdrawalService) VerifyTransferWebhook(ctx context.Context, headers map[string]string, body []byte) (*transfer.WebhookResult, error) {
	gateway, err := s.resolveGateway()
	if err != nil {
		return nil, err
	}
	return gateway.VerifyAndDecodeWebhook(ctx, headers, body)
}

// Get 查询提现申请
func (s *WithdrawalService) Get(id uint) (*models.WithdrawalRequest, error) {
	row, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, ErrWithdrawNotFound
	}
	return row, nil
}

// List 分页查询提现申请
func (s *WithdrawalService) List(filter repository.WithdrawalListFilter) ([]models.WithdrawalRequest, int64, error) {
	return s.repo.List(filter)
}

// ListAuditLogs 分页查询结算审计日志
func (s *WithdrawalService) ListAuditLogs(filter repository.SettlementAuditLogListFilter) ([]models.SettlementAuditLog, int64, error) {
	return s.auditRepo.List(filter)
}

func (s *WithdrawalService) settleInTx(tx *gorm.DB, repo *repository.GormWithdrawalRepository, row *models.WithdrawalRequest, remark string) error {
	if _, _, err := s.balanceService.DebitFrozenPermanentlyInTx(tx, BalanceChangeInput{
		MemberID:  row.MemberID,
		Amount:    row.Amount,
		Reference: fmt.Sprintf("withdraw:%s:settle", row.WithdrawalNo),
		Remark:    fmt.Sprintf("提现 %s 完成扣减", row.WithdrawalNo),
	}); err != nil {
		return err
	}

	now := time.Now()
	row.Status = constants.WithdrawStatusCompleted
	if trimmed := strings.TrimSpace(remark); trimmed != "" {
		row.AdminRemark = trimmed
	}
	row.CompletedAt = &now
	row.UpdatedAt = now
	return repo.Update(row)
}

func (s *WithdrawalService) failTransferInTx(repo *repository.GormWithdrawalRepository, row *models.WithdrawalRequest, failReason string) error {
	reason := strings.TrimSpace(failReason)
	if reason == "" {
		reason = "转账失败"
	}
	now := time.Now()
	row.AdminRemark = markAutoApproveFailure(row.AutoApproved, reason)
	// 失败不改状态也不解冻，资金保持冻结，由管理员驳回退回或确认完成
	row.TransferFailedAt = &now
	row.UpdatedAt = now
	return repo.Update(row)
}

func (s *WithdrawalService) recordInitiateFailure(row *models.WithdrawalRequest, cause error) error {
	logger.Warnw("withdraw_transfer_initiate_failed",
		"withdrawal_no", row.WithdrawalNo,
		"auto_approved", row.AutoApproved,
		"error", cause.Error(),
	)
	if !row.AutoApproved {
		return cause
	}

	updateErr := s.repo.Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		locked, err := repo.GetByIDForUpdate(row.ID)
		if err != nil {
			return err
		}
		if locked == nil || locked.Status != constants.WithdrawStatusApproved {
			return nil
		}
		now := time.Now()
		locked.AdminRemark = markAutoApproveFailure(true, cause.Error())
		locked.TransferFailedAt = &now
		locked.UpdatedAt = now
		return repo.Update(locked)
	})
	if updateErr != nil {
		return updateErr
	}
	return cause
}

func (s *WithdrawalService) dispatchTransfer(row *models.WithdrawalRequest) {
	if s.queueClient.Enabled() {
		err := s.queueClient.EnqueueTransferDispatch(queue.TransferDispatchPayload{WithdrawalID: row.ID})
		if err == nil {
			return
		}
		logger.Warnw("withdraw_transfer_enqueue_failed",
			"withdrawal_no", row.WithdrawalNo,
			"error", err.Error(),
		)
	}
	if err := s.InitiateApprovedTransfer(context.Background(), row.ID); err != nil {
		logger.Warnw("withdraw_transfer_inline_initiate_failed",
			"withdrawal_no", row.WithdrawalNo,
			"error", err.Error(),
		)
	}
}

func (s *WithdrawalService) resolveGateway() (transfer.Gateway, error) {
	setting, err := s.settingService.GetTransferGatewaySetting()
	if err != nil {
		return nil, err
	}
	if !setting.Enabled {
		return nil, ErrTransferGatewayDisabled
	}
	factory := s.gatewayFactory
	if factory == nil {
		factory = buildTransferGateway
	}
	return factory(setting)
}

func (s *WithdrawalService) writeAudit(
	tx *gorm.DB,
	operator AdminOperator,
	row *models.WithdrawalRequest,
	action, fromStatus, toStatus string,
	override bool,
	detail models.JSON,
) error {
	if s.auditRepo == nil {
		return nil
	}
	return s.auditRepo.WithTx(tx).Create(&models.SettlementAuditLog{
		OperatorAdminID:  operator.AdminID,
		OperatorUsername: strings.TrimSpace(operator.Username),
		WithdrawalID:     row.ID,
		WithdrawalNo:     row.WithdrawalNo,
		Action:           action,
		FromStatus:       fromStatus,
		ToStatus:         toStatus,
		Override:         override,
		RequestID:        strings.TrimSpace(operator.RequestID),
		DetailJSON:       detail,
	})
}

func buildTransferGateway(setting TransferGatewaySetting) (transfer.Gateway, error) {
	switch setting.Provider {
	case constants.TransferProviderWechatpay:
		return wechatpay.NewGateway(&wechatpay.Config{
			AppID:              setting.AppID,
			MerchantID:         setting.MchID,
			MerchantSerialNo:   setting.CertSerialNo,
			MerchantPrivateKey: setting.PrivateKey,
			APIV3Key:           setting.APIV3Key,
			NotifyURL:          setting.NotifyURL,
		})
	default:
		return nil, ErrTransferGatewayConfigInvalid
	}
}

func validateWithdrawAccount(input WithdrawalCreateInput) error {
	accountNumber := strings.TrimSpace(input.AccountNumber)
	switch strings.TrimSpace(input.AccountType) {
	case constants.WithdrawAccountTypeBank:
		if accountNumber == "" || strings.TrimSpace(input.AccountName) == "" || strings.TrimSpace(input.BankName) == "" {
			return ErrWithdrawAccountInvalid
		}
	case constants.WithdrawAccountTypeWechat:
		if accountNumber == "" {
			return ErrWithdrawAccountInvalid
		}
	default:
		return ErrWithdrawAccountInvalid
	}
	return nil
}

func rejectableWithdrawal(row *models.WithdrawalRequest) bool {
	switch row.Status {
	case constants.WithdrawStatusPending:
		return true
	case constants.WithdrawStatusApproved, constants.WithdrawStatusProcessing:
		return row.TransferFailedAt != nil
	default:
		return false
	}
}

func markAutoApproveFailure(autoApproved bool, reason string) string {
	reason = strings.TrimSpace(reason)
	if !autoApproved {
		return reason
	}
	if strings.HasPrefix(reason, constants.WithdrawAutoApproveFailedMark) {
		return reason
	}
	return constants.WithdrawAutoApproveFailedMark + reason
}

func generateWithdrawalNo() string {
	now := time.Now().Format("20060102150405")
	randPart := strings.ToUpper(strings.Split(uuid.New().String(), "-")[0])
	return fmt.Sprintf("W%s%s", now, randPart)
}
