package service

import (
	"strings"
	"time"

	"github.com/settle-next/internal/constants"
	"github.com/settle-next/internal/logger"
	"github.com/settle-next/internal/models"
	"github.com/settle-next/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BalanceService 会员佣金余额服务
// 三个佣金桶（total/available/frozen）的唯一写入方：所有变动都在会员行锁事务内
// 完成读改写，并按唯一 reference 写入流水，重复 reference 直接返回已有流水不再生效。
type BalanceService struct {
	memberRepo repository.MemberRepository
}

// BalanceChangeInput 余额变动输入
type BalanceChangeInput struct {
	MemberID  uint
	Amount    models.Money
	Reference string
	Remark    string
}

// NewBalanceService 创建会员佣金余额服务
func NewBalanceService(memberRepo repository.MemberRepository) *BalanceService {
	return &BalanceService{memberRepo: memberRepo}
}

// GetMember 获取会员
func (s *BalanceService) GetMember(memberID uint) (*models.Member, error) {
	member, err := s.memberRepo.GetByID(memberID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, ErrMemberNotFound
	}
	return member, nil
}

// ListTransactions 查询佣金余额流水
func (s *BalanceService) ListTransactions(filter repository.CommissionTransactionListFilter) ([]models.CommissionTransaction, int64, error) {
	return s.memberRepo.ListTransactions(filter)
}

// CreditAvailable 入账可用佣金（同时累加 total）
func (s *BalanceService) CreditAvailable(input BalanceChangeInput) (*models.Member, *models.CommissionTransaction, error) {
	return s.changeBalance(constants.BalanceTxnTypeCommissionCredit, input)
}

// MoveAvailableToFrozen 可用佣金转入冻结（提现预留）
func (s *BalanceService) MoveAvailableToFrozen(input BalanceChangeInput) (*models.Member, *models.CommissionTransaction, error) {
	return s.changeBalance(constants.BalanceTxnTypeWithdrawFreeze, input)
}

// MoveFrozenToAvailable 冻结佣金退回可用（提现驳回/撤销）
func (s *BalanceService) MoveFrozenToAvailable(input BalanceChangeInput) (*models.Member, *models.CommissionTransaction, error) {
	return s.changeBalance(constants.BalanceTxnTypeWithdrawUnfreeze, input)
}

// DebitFrozenPermanently 冻结佣金永久扣减（提现完成）
func (s *BalanceService) DebitFrozenPermanently(input BalanceChangeInput) (*models.Member, *models.CommissionTransaction, error) {
	return s.changeBalance(constants.BalanceTxnTypeWithdrawSettle, input)
}

// RestoreAvailable 已扣减的提现金额返还可用（完成后撤销转账，不再累加 total）
func (s *BalanceService) RestoreAvailable(input BalanceChangeInput) (*models.Member, *models.CommissionTransaction, error) {
	return s.changeBalance(constants.BalanceTxnTypeWithdrawRestore, input)
}

// CreditAvailableInTx 事务内入账可用佣金
func (s *BalanceService) CreditAvailableInTx(tx *gorm.DB, input BalanceChangeInput) (*models.Member, *models.CommissionTransaction, error) {
	return s.changeBalanceInTx(tx, constants.BalanceTxnTypeCommissionCredit, input)
}

// MoveAvailableToFrozenInTx 事务内可用转冻结
func (s *BalanceService) MoveAvailableToFrozenInTx(tx *gorm.DB, input BalanceChangeInput) (*models.Member, *models.CommissionTransaction, error) {
	return s.changeBalanceInTx(tx, constants.BalanceTxnTypeWithdrawFreeze, input)
}

// MoveFrozenToAvailableInTx 事务内冻结退回可用
func (s *BalanceService) MoveFrozenToAvailableInTx(tx *gorm.DB, input BalanceChangeInput) (*models.Member, *models.CommissionTransaction, error) {
	return s.changeBalanceInTx(tx, constants.BalanceTxnTypeWithdrawUnfreeze, input)
}

// DebitFrozenPermanentlyInTx 事务内冻结永久扣减
func (s *BalanceService) DebitFrozenPermanentlyInTx(tx *gorm.DB, input BalanceChangeInput) (*models.Member, *models.CommissionTransaction, error) {
	return s.changeBalanceInTx(tx, constants.BalanceTxnTypeWithdrawSettle, input)
}

// RestoreAvailableInTx 事务内返还已扣减的提现金额
func (s *BalanceService) RestoreAvailableInTx(tx *gorm.DB, input BalanceChangeInput) (*models.Member, *models.CommissionTransaction, error) {
	return s.changeBalanceInTx(tx, constants.BalanceTxnTypeWithdrawRestore, input)
}

func (s *BalanceService) changeBalance(txnType string, input BalanceChangeInput) (*models.Member, *models.CommissionTransaction, error) {
	var memberResult *models.Member
	var txnResult *models.CommissionTransaction
	if err := s.memberRepo.Transaction(func(tx *gorm.DB) error {
		member, txn, err := s.changeBalanceInTx(tx, txnType, input)
		if err != nil {
			return err
		}
		memberResult = member
		txnResult = txn
		return nil
	}); err != nil {
		return nil, nil, err
	}
	return memberResult, txnResult, nil
}

func (s *BalanceService) changeBalanceInTx(tx *gorm.DB, txnType string, input BalanceChangeInput) (*models.Member, *models.CommissionTransaction, error) {
	if tx == nil {
		return nil, nil, ErrBalanceUpdateFailed
	}
	if input.MemberID == 0 {
		return nil, nil, ErrMemberNotFound
	}
	amount := input.Amount.Decimal.Round(2)
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, nil, ErrBalanceInvalidAmount
	}
	reference := strings.TrimSpace(input.Reference)
	if reference == "" {
		return nil, nil, ErrBalanceTransactionCreateFailed
	}

	repo := s.memberRepo.WithTx(tx)

	exists, err := repo.GetTransactionByReference(reference)
	if err != nil {
		return nil, nil, err
	}
	if exists != nil {
		member, memberErr := repo.GetByID(input.MemberID)
		if memberErr != nil {
			return nil, nil, memberErr
		}
		return member, exists, nil
	}

	member, err := repo.GetByIDForUpdate(input.MemberID)
	if err != nil {
		return nil, nil, err
	}
	if member == nil {
		return nil, nil, ErrMemberNotFound
	}

	availableBefore := member.AvailableCommission.Decimal.Round(2)
	frozenBefore := member.FrozenCommission.Decimal.Round(2)
	availableAfter := availableBefore
	frozenAfter := frozenBefore

	switch txnType {
	case constants.BalanceTxnTypeCommissionCredit:
		availableAfter = availableBefore.Add(amount).Round(2)
		member.TotalCommission = models.NewMoneyFromDecimal(member.TotalCommission.Decimal.Add(amount))
	case constants.BalanceTxnTypeWithdrawFreeze:
		availableAfter = availableBefore.Sub(amount).Round(2)
		frozenAfter = frozenBefore.Add(amount).Round(2)
		if availableAfter.LessThan(decimal.Zero) {
			return nil, nil, ErrBalanceInsufficient
		}
	case constants.BalanceTxnTypeWithdrawUnfreeze:
		frozenAfter = frozenBefore.Sub(amount).Round(2)
		availableAfter = availableBefore.Add(amount).Round(2)
		if frozenAfter.LessThan(decimal.Zero) {
			return nil, nil, ErrBalanceInsufficient
		}
	case constants.BalanceTxnTypeWithdrawSettle:
		frozenAfter = frozenBefore.Sub(amount).Round(2)
		if frozenAfter.LessThan(decimal.Zero) {
			// 冻结余额不足以扣减说明前序状态迁移被破坏，属一致性故障，只告警不纠正
			logger.Errorw("balance_settle_consistency_fault",
				"member_id", member.ID,
				"frozen_before", frozenBefore.StringFixed(2),
				"amount", amount.StringFixed(2),
				"reference", reference,
			)
			return nil, nil, ErrBalanceInsufficient
		}
	case constants.BalanceTxnTypeWithdrawRestore:
		availableAfter = availableBefore.Add(amount).Round(2)
	default:
		return nil, nil, ErrBalanceInvalidAmount
	}

	now := time.Now()
	member.AvailableCommission = models.NewMoneyFromDecimal(availableAfter)
	member.FrozenCommission = models.NewMoneyFromDecimal(frozenAfter)
	member.UpdatedAt = now
	if err := repo.Update(member); err != nil {
		return nil, nil, ErrBalanceUpdateFailed
	}

	txn := &models.CommissionTransaction{
		MemberID:        member.ID,
		Type:            txnType,
		Amount:          models.NewMoneyFromDecimal(amount),
		AvailableBefore: models.NewMoneyFromDecimal(availableBefore),
		AvailableAfter:  models.NewMoneyFromDecimal(availableAfter),
		FrozenBefore:    models.NewMoneyFromDecimal(frozenBefore),
		FrozenAfter:     models.NewMoneyFromDecimal(frozenAfter),
		Reference:       reference,
		Remark:          cleanBalanceRemark(input.Remark, defaultBalanceRemark(txnType)),
		CreatedAt:       now,
	}
	if err := repo.CreateTransaction(txn); err != nil {
		return nil, nil, ErrBalanceTransactionCreateFailed
	}
	return member, txn, nil
}

func defaultBalanceRemark(txnType string) string {
	switch txnType {
	case constants.BalanceTxnTypeCommissionCredit:
		return "佣金确认入账"
	case constants.BalanceTxnTypeWithdrawFreeze:
		return "提现冻结"
	case constants.BalanceTxnTypeWithdrawUnfreeze:
		return "提现退回"
	case constants.BalanceTxnTypeWithdrawSettle:
		return "提现完成扣减"
	case constants.BalanceTxnTypeWithdrawRestore:
		return "提现撤销返还"
	default:
		return "佣金余额变动"
	}
}

func cleanBalanceRemark(raw string, fallback string) string {
	remark := strings.TrimSpace(raw)
	if remark == "" {
		return fallback
	}
	return remark
}
