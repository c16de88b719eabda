package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/settle-next/internal/constants"
	"github.com/settle-next/internal/models"
	"github.com/settle-next/internal/queue"
	"github.com/settle-next/internal/repository"
	"github.com/settle-next/internal/transfer"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type fakeTransferGateway struct {
	initiate func(ctx context.Context, input transfer.InitiateInput) (*transfer.InitiateResult, error)
	cancel   func(ctx context.Context, outBillNo string) (*transfer.CancelResult, error)
	query    func(ctx context.Context, outBillNo string) (*transfer.QueryResult, error)
}

func (g *fakeTransferGateway) Name() string { return "fake" }

func (g *fakeTransferGateway) InitiateTransfer(ctx context.Context, input transfer.InitiateInput) (*transfer.InitiateResult, error) {
	if g.initiate == nil {
		return &transfer.InitiateResult{BillNo: "BILL-" + input.OutBillNo, State: constants.TransferBillStateAccepted}, nil
	}
	return g.initiate(ctx, input)
}

func (g *fakeTransferGateway) CancelTransfer(ctx context.Context, outBillNo string) (*transfer.CancelResult, error) {
	if g.cancel == nil {
		return &transfer.CancelResult{State: constants.TransferBillStateCanceling}, nil
	}
	return g.cancel(ctx, outBillNo)
}

func (g *fakeTransferGateway) QueryTransfer(ctx context.Context, outBillNo string) (*transfer.QueryResult, error) {
	if g.query == nil {
		return &transfer.QueryResult{OutBillNo: outBillNo, State: constants.TransferBillStateProcessing}, nil
	}
	return g.query(ctx, outBillNo)
}

func (g *fakeTransferGateway) VerifyAndDecodeWebhook(ctx context.Context, headers map[string]string, body []byte) (*transfer.WebhookResult, error) {
	return nil, transfer.ErrResponseInvalid
}

func setupWithdrawalServiceTest(t *testing.T) (*WithdrawalService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:withdrawal_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Member{},
		&models.CommissionTransaction{},
		&models.WithdrawalRequest{},
		&models.SettlementAuditLog{},
		&models.Setting{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db

	memberRepo := repository.NewMemberRepository(db)
	queueClient, err := queue.NewClient(nil)
	if err != nil {
		t.Fatalf("build queue client failed: %v", err)
	}
	svc := NewWithdrawalService(
		repository.NewWithdrawalRepository(db),
		memberRepo,
		repository.NewSettlementAuditLogRepository(db),
		NewBalanceService(memberRepo),
		NewSettingService(repository.NewSettingRepository(db)),
		queueClient,
	)
	return svc, db
}

func seedWithdrawSetting(t *testing.T, db *gorm.DB, setting WithdrawSetting) {
	t.Helper()
	if err := db.Create(&models.Setting{
		Key:       constants.SettingKeyWithdrawConfig,
		ValueJSON: models.JSON(WithdrawSettingToMap(setting)),
	}).Error; err != nil {
		t.Fatalf("seed withdraw setting failed: %v", err)
	}
}

func seedTransferGatewaySetting(t *testing.T, db *gorm.DB, enabled bool) {
	t.Helper()
	if err := db.Create(&models.Setting{
		Key: constants.SettingKeyTransferGatewayConfig,
		ValueJSON: models.JSON(TransferGatewaySettingToMap(TransferGatewaySetting{
			Enabled:      enabled,
			Provider:     constants.TransferProviderWechatpay,
			MchID:        "1900000001",
			CertSerialNo: "serial",
			PrivateKey:   "key",
			APIV3Key:     "abcdefghijklmnopqrstuvwxyz123456",
			AppID:        "wx-app",
		})),
	}).Error; err != nil {
		t.Fatalf("seed transfer gateway setting failed: %v", err)
	}
}

func bankWithdrawInput(memberID uint, amount float64) WithdrawalCreateInput {
	return WithdrawalCreateInput{
		MemberID:      memberID,
		Amount:        models.NewMoneyFromDecimal(decimal.NewFromFloat(amount)),
		AccountType:   constants.WithdrawAccountTypeBank,
		AccountName:   "测试收款人",
		AccountNumber: "6222020200112233",
		BankName:      "测试银行",
	}
}

func wechatWithdrawInput(memberID uint, amount float64) WithdrawalCreateInput {
	return WithdrawalCreateInput{
		MemberID:      memberID,
		Amount:        models.NewMoneyFromDecimal(decimal.NewFromFloat(amount)),
		AccountType:   constants.WithdrawAccountTypeWechat,
		AccountNumber: "openid-test",
	}
}

func TestWithdrawalServiceCreateFreezesBalance(t *testing.T) {
	svc, db := setupWithdrawalServiceTest(t)
	createTestMember(t, db, 401, 300, 0, 300)

	request, err := svc.Create(bankWithdrawInput(401, 120))
	if err != nil {
		t.Fatalf("create withdrawal failed: %v", err)
	}
	if request.Status != constants.WithdrawStatusPending || request.AutoApproved {
		t.Fatalf("unexpected request state: %+v", request)
	}
	if request.WithdrawalNo == "" {
		t.Fatalf("missing withdrawal no")
	}

	var member models.Member
	if err := db.First(&member, 401).Error; err != nil {
		t.Fatalf("reload member failed: %v", err)
	}
	if !member.AvailableCommission.Decimal.Equal(decimal.NewFromInt(180)) ||
		!member.FrozenCommission.Decimal.Equal(decimal.NewFromInt(120)) {
		t.Fatalf("unexpected balances after create: %+v", member)
	}

	var txn models.CommissionTransaction
	reference := fmt.Sprintf("withdraw:%s:freeze", request.WithdrawalNo)
	if err := db.Where("reference = ?", reference).First(&txn).Error; err != nil {
		t.Fatalf("freeze transaction missing: %v", err)
	}
	if txn.Type != constants.BalanceTxnTypeWithdrawFreeze {
		t.Fatalf("unexpected txn type: %s", txn.Type)
	}
}

func TestWithdrawalServiceCreateInsufficientRollsBack(t *testing.T) {
	svc, db := setupWithdrawalServiceTest(t)
	createTestMember(t, db, 402, 50, 0, 50)

	_, err := svc.Create(bankWithdrawInput(402, 80))
	if !errors.Is(err, ErrBalanceInsufficient) {
		t.Fatalf("expected insufficient balance, got: %v", err)
	}

	var count int64
	if err := db.Model(&models.WithdrawalRequest{}).Where("member_id = ?", 402).Count(&count).Error; err != nil {
		t.Fatalf("count requests failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("request persisted despite rollback, got %d rows", count)
	}
}

func TestWithdrawalServiceReserveExactlyOnce(t *testing.T) {
	svc, db := setupWithdrawalServiceTest(t)
	createTestMember(t, db, 413, 100, 0, 100)

	// 两笔合计超出可用余额的申请只允许一笔通过
	first, err := svc.Create(bankWithdrawInput(413, 60))
	if err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	if first.Status != constants.WithdrawStatusPending {
		t.Fatalf("unexpected first request status: %s", first.Status)
	}

	_, err = svc.Create(bankWithdrawInput(413, 60))
	if !errors.Is(err, ErrBalanceInsufficient) {
		t.Fatalf("expected insufficient balance on second create, got: %v", err)
	}

	var count int64
	if err := db.Model(&models.WithdrawalRequest{}).Where("member_id = ?", 413).Count(&count).Error; err != nil {
		t.Fatalf("count requests failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected exactly one request, got %d", count)
	}

	var member models.Member
	if err := db.First(&member, 413).Error; err != nil {
		t.Fatalf("reload member failed: %v", err)
	}
	if !member.AvailableCommission.Decimal.Equal(decimal.NewFromInt(40)) ||
		!member.FrozenCommission.Decimal.Equal(decimal.NewFromInt(60)) {
		t.Fatalf("unexpected balances after double create: %+v", member)
	}

	var freezeCount int64
	if err := db.Model(&models.CommissionTransaction{}).
		Where("member_id = ? AND type = ?", 413, constants.BalanceTxnTypeWithdrawFreeze).
		Count(&freezeCount).Error; err != nil {
		t.Fatalf("count freeze transactions failed: %v", err)
	}
	if freezeCount != 1 {
		t.Fatalf("expected single freeze transaction, got %d", freezeCount)
	}
}

func TestWithdrawalServiceCreateAccountValidation(t *testing.T) {
	svc, db := setupWithdrawalServiceTest(t)
	createTestMember(t, db, 403, 100, 0, 100)

	input := bankWithdrawInput(403, 10)
	input.BankName = ""
	if _, err := svc.Create(input); !errors.Is(err, ErrWithdrawAccountInvalid) {
		t.Fatalf("expected account error for missing bank name, got: %v", err)
	}

	input = bankWithdrawInput(403, 10)
	input.AccountType = "alipay"
	if _, err := svc.Create(input); !errors.Is(err, ErrWithdrawAccountInvalid) {
		t.Fatalf("expected account error for unknown type, got: %v", err)
	}

	input = bankWithdrawInput(403, 0)
	if _, err := svc.Create(input); !errors.Is(err, ErrWithdrawAmountInvalid) {
		t.Fatalf("expected amount error, got: %v", err)
	}
}

func TestWithdrawalServiceAutoApproveBoundary(t *testing.T) {
	svc, db := setupWithdrawalServiceTest(t)
	createTestMember(t, db, 404, 2000, 0, 2000)
	seedWithdrawSetting(t, db, WithdrawSetting{Enabled: true, MaxAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(500))})

	atLimit, err := svc.Create(bankWithdrawInput(404, 500))
	if err != nil {
		t.Fatalf("create at-limit withdrawal failed: %v", err)
	}
	if atLimit.Status != constants.WithdrawStatusApproved || !atLimit.AutoApproved {
		t.Fatalf("expected auto approval at limit: %+v", atLimit)
	}
	if atLimit.ProcessedAt == nil {
		t.Fatalf("auto approval missing processed_at")
	}

	overLimit, err := svc.Create(bankWithdrawInput(404, 500.01))
	if err != nil {
		t.Fatalf("create over-limit withdrawal failed: %v", err)
	}
	if overLimit.Status != constants.WithdrawStatusPending || overLimit.AutoApproved {
		t.Fatalf("expected manual review over limit: %+v", overLimit)
	}
}

func TestWithdrawalServiceRejectReturnsFrozen(t *testing.T) {
	svc, db := setupWithdrawalServiceTest(t)
	createTestMember(t, db, 405, 100, 0, 100)

	request, err := svc.Create(bankWithdrawInput(405, 60))
	if err != nil {
		t.Fatalf("create withdrawal failed: %v", err)
	}

	operator := AdminOperator{AdminID: 1, Username: "admin", RequestID: "req-405"}
	rejected, err := svc.Reject(operator, request.ID, "资料不符")
	if err != nil {
		t.Fatalf("reject failed: %v", err)
	}
	if rejected.Status != constants.WithdrawStatusRejected || rejected.AdminRemark != "资料不符" {
		t.Fatalf("unexpected rejected state: %+v", rejected)
	}

	var member models.Member
	if err := db.First(&member, 405).Error; err != nil {
		t.Fatalf("reload member failed: %v", err)
	}
	if !member.AvailableCommission.Decimal.Equal(decimal.NewFromInt(100)) ||
		!member.FrozenCommission.Decimal.Equal(decimal.Zero) {
		t.Fatalf("frozen not returned after reject: %+v", member)
	}

	var audit models.SettlementAuditLog
	if err := db.Where("withdrawal_id = ? AND action = ?", request.ID, constants.SettlementActionReject).
		First(&audit).Error; err != nil {
		t.Fatalf("reject audit log missing: %v", err)
	}
	if audit.FromStatus != constants.WithdrawStatusPending || audit.ToStatus != constants.WithdrawStatusRejected {
		t.Fatalf("unexpected audit transition: %+v", audit)
	}

	if _, err := svc.Reject(operator, request.ID, "再次驳回"); !errors.Is(err, ErrWithdrawStatusInvalid) {
		t.Fatalf("expected status error on double reject, got: %v", err)
	}
}

func TestWithdrawalServiceApproveAndComplete(t *testing.T) {
	svc, db := setupWithdrawalServiceTest(t)
	createTestMember(t, db, 406, 200, 0, 200)

	request, err := svc.Create(bankWithdrawInput(406, 150))
	if err != nil {
		t.Fatalf("create withdrawal failed: %v", err)
	}

	operator := AdminOperator{AdminID: 2, Username: "ops", RequestID: "req-406"}
	approved, err := svc.Approve(operator, request.ID, "线下打款")
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if approved.Status != constants.WithdrawStatusApproved {
		t.Fatalf("unexpected status after approve: %s", approved.Status)
	}

	completed, err := svc.Complete(operator, request.ID, "已打款")
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if completed.Status != constants.WithdrawStatusCompleted || completed.CompletedAt == nil {
		t.Fatalf("unexpected state after complete: %+v", completed)
	}

	var member models.Member
	if err := db.First(&member, 406).Error; err != nil {
		t.Fatalf("reload member failed: %v", err)
	}
	if !member.AvailableCommission.Decimal.Equal(decimal.NewFromInt(50)) ||
		!member.FrozenCommission.Decimal.Equal(decimal.Zero) {
		t.Fatalf("unexpected balances after complete: %+v", member)
	}
	// total 不因提现完成而变化
	if !member.TotalCommission.Decimal.Equal(decimal.NewFromInt(200)) {
		t.Fatalf("total changed by completion: %s", member.TotalCommission.String())
	}

	var auditCount int64
	if err := db.Model(&models.SettlementAuditLog{}).Where("withdrawal_id = ?", request.ID).Count(&auditCount).Error; err != nil {
		t.Fatalf("count audit logs failed: %v", err)
	}
	if auditCount != 2 {
		t.Fatalf("expected approve+complete audit logs, got %d", auditCount)
	}
}

func TestWithdrawalServiceTransferResultIdempotent(t *testing.T) {
	svc, db := setupWithdrawalServiceTest(t)
	createTestMember(t, db, 407, 800, 0, 800)
	seedWithdrawSetting(t, db, WithdrawSetting{Enabled: true, MaxAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(500))})
	seedTransferGatewaySetting(t, db, true)
	svc.gatewayFactory = func(setting TransferGatewaySetting) (transfer.Gateway, error) {
		return &fakeTransferGateway{}, nil
	}

	request, err := svc.Create(wechatWithdrawInput(407, 300))
	if err != nil {
		t.Fatalf("create withdrawal failed: %v", err)
	}

	var reloaded models.WithdrawalRequest
	if err := db.First(&reloaded, request.ID).Error; err != nil {
		t.Fatalf("reload request failed: %v", err)
	}
	if reloaded.Status != constants.WithdrawStatusProcessing || reloaded.TransferBillNo == "" {
		t.Fatalf("transfer not initiated after auto approval: %+v", reloaded)
	}

	notice := TransferResultNotice{
		OutBillNo: request.WithdrawalNo,
		BillNo:    reloaded.TransferBillNo,
		State:     constants.TransferBillStateSuccess,
	}
	if err := svc.HandleTransferResult(notice); err != nil {
		t.Fatalf("handle transfer result failed: %v", err)
	}
	if err := db.First(&reloaded, request.ID).Error; err != nil {
		t.Fatalf("reload request failed: %v", err)
	}
	if reloaded.Status != constants.WithdrawStatusCompleted {
		t.Fatalf("unexpected status after success notice: %s", reloaded.Status)
	}

	// 终态后的重复通知被吸收，不产生二次扣减
	if err := svc.HandleTransferResult(notice); err != nil {
		t.Fatalf("duplicate notice failed: %v", err)
	}
	var member models.Member
	if err := db.First(&member, 407).Error; err != nil {
		t.Fatalf("reload member failed: %v", err)
	}
	if !member.AvailableCommission.Decimal.Equal(decimal.NewFromInt(500)) ||
		!member.FrozenCommission.Decimal.Equal(decimal.Zero) {
		t.Fatalf("duplicate notice changed balances: %+v", member)
	}
	var txnCount int64
	if err := db.Model(&models.CommissionTransaction{}).
		Where("reference = ?", fmt.Sprintf("withdraw:%s:settle", request.WithdrawalNo)).
		Count(&txnCount).Error; err != nil {
		t.Fatalf("count settle transactions failed: %v", err)
	}
	if txnCount != 1 {
		t.Fatalf("expected single settle transaction, got %d", txnCount)
	}
}

func TestWithdrawalServiceTransferFailKeepsFrozen(t *testing.T) {
	svc, db := setupWithdrawalServiceTest(t)
	createTestMember(t, db, 408, 600, 0, 600)
	seedWithdrawSetting(t, db, WithdrawSetting{Enabled: true, MaxAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(500))})
	seedTransferGatewaySetting(t, db, true)
	svc.gatewayFactory = func(setting TransferGatewaySetting) (transfer.Gateway, error) {
		return &fakeTransferGateway{}, nil
	}

	request, err := svc.Create(wechatWithdrawInput(408, 200))
	if err != nil {
		t.Fatalf("create withdrawal failed: %v", err)
	}

	if err := svc.HandleTransferResult(TransferResultNotice{
		OutBillNo:  request.WithdrawalNo,
		State:      constants.TransferBillStateFail,
		FailReason: "收款方账户异常",
	}); err != nil {
		t.Fatalf("handle fail notice failed: %v", err)
	}

	var reloaded models.WithdrawalRequest
	if err := db.First(&reloaded, request.ID).Error; err != nil {
		t.Fatalf("reload request failed: %v", err)
	}
	// 失败不改状态也不解冻，标记失败时间等待人工处理
	if reloaded.Status != constants.WithdrawStatusProcessing {
		t.Fatalf("unexpected status after fail notice: %s", reloaded.Status)
	}
	if reloaded.TransferFailedAt == nil {
		t.Fatalf("transfer failed time missing")
	}
	if !strings.HasPrefix(reloaded.AdminRemark, constants.WithdrawAutoApproveFailedMark) {
		t.Fatalf("auto approve failure mark missing: %q", reloaded.AdminRemark)
	}

	var member models.Member
	if err := db.First(&member, 408).Error; err != nil {
		t.Fatalf("reload member failed: %v", err)
	}
	if !member.FrozenCommission.Decimal.Equal(decimal.NewFromInt(200)) {
		t.Fatalf("frozen released on failure: %s", member.FrozenCommission.String())
	}
}

func TestWithdrawalServiceRejectAfterTransferFail(t *testing.T) {
	svc, db := setupWithdrawalServiceTest(t)
	createTestMember(t, db, 412, 100, 0, 100)
	seedTransferGatewaySetting(t, db, true)
	svc.gatewayFactory = func(setting TransferGatewaySetting) (transfer.Gateway, error) {
		return &fakeTransferGateway{}, nil
	}

	request, err := svc.Create(wechatWithdrawInput(412, 60))
	if err != nil {
		t.Fatalf("create withdrawal failed: %v", err)
	}
	if _, err := svc.Approve(AdminOperator{AdminID: 1}, request.ID, ""); err != nil {
		t.Fatalf("approve withdrawal failed: %v", err)
	}

	var reloaded models.WithdrawalRequest
	if err := db.First(&reloaded, request.ID).Error; err != nil {
		t.Fatalf("reload request failed: %v", err)
	}
	if reloaded.Status != constants.WithdrawStatusProcessing || reloaded.TransferBillNo == "" {
		t.Fatalf("transfer not initiated after approval: %+v", reloaded)
	}

	// 转账失败前不允许驳回 processing 单
	if _, err := svc.Reject(AdminOperator{AdminID: 1}, request.ID, "提前驳回"); !errors.Is(err, ErrWithdrawStatusInvalid) {
		t.Fatalf("expected status invalid before failure, got: %v", err)
	}

	if err := svc.HandleTransferResult(TransferResultNotice{
		OutBillNo:  request.WithdrawalNo,
		State:      constants.TransferBillStateFail,
		FailReason: "收款方账户注销",
	}); err != nil {
		t.Fatalf("handle fail notice failed: %v", err)
	}
	if err := db.First(&reloaded, request.ID).Error; err != nil {
		t.Fatalf("reload request failed: %v", err)
	}
	if reloaded.Status != constants.WithdrawStatusProcessing || reloaded.TransferFailedAt == nil {
		t.Fatalf("failure not recorded in place: %+v", reloaded)
	}
	// 手工审核的失败只记录原因，不带自动审核失败标记
	if strings.HasPrefix(reloaded.AdminRemark, constants.WithdrawAutoApproveFailedMark) {
		t.Fatalf("manual approval should not carry auto approve mark: %q", reloaded.AdminRemark)
	}

	// 失败后人工驳回，冻结资金原路退回
	rejected, err := svc.Reject(AdminOperator{AdminID: 1}, request.ID, "转账失败退回")
	if err != nil {
		t.Fatalf("reject after failure failed: %v", err)
	}
	if rejected.Status != constants.WithdrawStatusRejected {
		t.Fatalf("unexpected status after reject: %s", rejected.Status)
	}

	var member models.Member
	if err := db.First(&member, 412).Error; err != nil {
		t.Fatalf("reload member failed: %v", err)
	}
	if !member.AvailableCommission.Decimal.Equal(decimal.NewFromInt(100)) ||
		!member.FrozenCommission.Decimal.Equal(decimal.Zero) {
		t.Fatalf("balances not restored after reject: %+v", member)
	}
	if !member.TotalCommission.Decimal.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("total changed by reject: %s", member.TotalCommission.String())
	}
}

func TestWithdrawalServiceAutoApproveInitiateFailureMarked(t *testing.T) {
	svc, db := setupWithdrawalServiceTest(t)
	createTestMember(t, db, 409, 600, 0, 600)
	seedWithdrawSetting(t, db, WithdrawSetting{Enabled: true, MaxAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(500))})
	seedTransferGatewaySetting(t, db, true)
	svc.gatewayFactory = func(setting TransferGatewaySetting) (transfer.Gateway, error) {
		return &fakeTransferGateway{
			initiate: func(ctx context.Context, input transfer.InitiateInput) (*transfer.InitiateResult, error) {
				return nil, transfer.ErrRequestFailed
			},
		}, nil
	}

	request, err := svc.Create(wechatWithdrawInput(409, 100))
	if err != nil {
		t.Fatalf("create withdrawal failed: %v", err)
	}

	var reloaded models.WithdrawalRequest
	if err := db.First(&reloaded, request.ID).Error; err != nil {
		t.Fatalf("reload request failed: %v", err)
	}
	if reloaded.Status != constants.WithdrawStatusApproved {
		t.Fatalf("unexpected status after initiate failure: %s", reloaded.Status)
	}
	if !strings.HasPrefix(reloaded.AdminRemark, constants.WithdrawAutoApproveFailedMark) {
		t.Fatalf("auto approve failure mark missing: %q", reloaded.AdminRemark)
	}
}

func TestWithdrawalServiceCancelTransferAfterComplete(t *testing.T) {
	svc, db := setupWithdrawalServiceTest(t)
	createTestMember(t, db, 410, 500, 0, 500)
	seedWithdrawSetting(t, db, WithdrawSetting{Enabled: true, MaxAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(500))})
	seedTransferGatewaySetting(t, db, true)
	svc.gatewayFactory = func(setting TransferGatewaySetting) (transfer.Gateway, error) {
		return &fakeTransferGateway{}, nil
	}

	request, err := svc.Create(wechatWithdrawInput(410, 250))
	if err != nil {
		t.Fatalf("create withdrawal failed: %v", err)
	}
	if err := svc.HandleTransferResult(TransferResultNotice{
		OutBillNo: request.WithdrawalNo,
		State:     constants.TransferBillStateSuccess,
	}); err != nil {
		t.Fatalf("settle via notice failed: %v", err)
	}

	operator := AdminOperator{AdminID: 3, Username: "risk", RequestID: "req-410"}
	cancelled, err := svc.CancelTransfer(context.Background(), operator, request.ID, "风控撤销")
	if err != nil {
		t.Fatalf("cancel transfer failed: %v", err)
	}
	if cancelled.Status != constants.WithdrawStatusCancelled {
		t.Fatalf("unexpected status after cancel: %s", cancelled.Status)
	}

	var member models.Member
	if err := db.First(&member, 410).Error; err != nil {
		t.Fatalf("reload member failed: %v", err)
	}
	// 完成后的撤销走返还入账，total 不再累加
	if !member.AvailableCommission.Decimal.Equal(decimal.NewFromInt(500)) ||
		!member.FrozenCommission.Decimal.Equal(decimal.Zero) {
		t.Fatalf("unexpected balances after cancel: %+v", member)
	}
	if !member.TotalCommission.Decimal.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("total changed by cancel restore: %s", member.TotalCommission.String())
	}

	var audit models.SettlementAuditLog
	if err := db.Where("withdrawal_id = ? AND action = ?", request.ID, constants.SettlementActionCancelTransfer).
		First(&audit).Error; err != nil {
		t.Fatalf("cancel audit log missing: %v", err)
	}
	if !audit.Override {
		t.Fatalf("expected override flag on completed-state cancel")
	}
}

func TestWithdrawalServiceCancelTransferNotCancellable(t *testing.T) {
	svc, db := setupWithdrawalServiceTest(t)
	createTestMember(t, db, 411, 500, 0, 500)
	seedTransferGatewaySetting(t, db, true)

	request, err := svc.Create(bankWithdrawInput(411, 100))
	if err != nil {
		t.Fatalf("create withdrawal failed: %v", err)
	}

	// 银行账户没有网关转账单，不可撤销
	_, err = svc.CancelTransfer(context.Background(), AdminOperator{AdminID: 1}, request.ID, "")
	if !errors.Is(err, ErrWithdrawNotCancellable) {
		t.Fatalf("expected not cancellable, got: %v", err)
	}
}
