package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/settle-next/internal/constants"
	"github.com/settle-next/internal/logger"
	"github.com/settle-next/internal/models"
	"github.com/settle-next/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const commissionConfirmBatchLimit = 200

// CommissionService 佣金结算业务服务
// 结算记录只允许 pending → confirmed / pending → cancelled，确认时经余额服务入账可用佣金。
type CommissionService struct {
	repo           repository.CommissionRepository
	memberRepo     repository.MemberRepository
	balanceService *BalanceService
	settingService *SettingService
}

// NewCommissionService 创建佣金结算服务
func NewCommissionService(
	repo repository.CommissionRepository,
	memberRepo repository.MemberRepository,
	balanceService *BalanceService,
	settingService *SettingService,
) *CommissionService {
	return &CommissionService{
		repo:           repo,
		memberRepo:     memberRepo,
		balanceService: balanceService,
		settingService: settingService,
	}
}

// CommissionCreateInput 结算记录创建输入
type CommissionCreateInput struct {
	OrderID           uint         `json:"order_id"`
	RecipientMemberID uint         `json:"recipient_member_id"`
	PayerMemberID     uint         `json:"payer_member_id"`
	CommissionType    string       `json:"commission_type"`
	OrderAmount       models.Money `json:"order_amount"`
	CommissionRate    models.Money `json:"commission_rate"`
}

// CommissionRecipient 订单分润链路上的一个受益人
type CommissionRecipient struct {
	MemberID       uint   `json:"member_id"`
	CommissionType string `json:"commission_type"`
}

// CommissionStatsBucket 统计桶
type CommissionStatsBucket struct {
	Count  int64        `json:"count"`
	Amount models.Money `json:"amount"`
}

// CommissionStats 佣金结算统计
type CommissionStats struct {
	Total    CommissionStatsBucket            `json:"total"`
	ByStatus map[string]CommissionStatsBucket `json:"by_status"`
	ByType   map[string]CommissionStatsBucket `json:"by_type"`
}

// CreateCalculation 创建结算记录（初始状态 pending）
func (s *CommissionService) CreateCalculation(input CommissionCreateInput) (*models.CommissionCalculation, error) {
	commissionType := strings.TrimSpace(input.CommissionType)
	if !isValidCommissionType(commissionType) {
		return nil, ErrCommissionInvalid
	}
	if input.OrderID == 0 || input.RecipientMemberID == 0 {
		return nil, ErrCommissionInvalid
	}

	orderAmount := input.OrderAmount.Decimal.Round(2)
	if orderAmount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrCommissionInvalid
	}
	rate := input.CommissionRate.Decimal
	if rate.LessThan(decimal.Zero) || rate.GreaterThan(decimal.NewFromInt(1)) {
		return nil, ErrCommissionInvalid
	}
	commissionAmount := orderAmount.Mul(rate).Round(2)
	if commissionAmount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrCommissionInvalid
	}

	member, err := s.memberRepo.GetByID(input.RecipientMemberID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, ErrMemberNotFound
	}
	if member.Status != constants.MemberStatusActive {
		return nil, ErrMemberDisabled
	}

	existing, err := s.repo.GetByOrderAndRecipient(input.OrderID, input.RecipientMemberID, commissionType)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrCommissionExists
	}

	calculation := &models.CommissionCalculation{
		OrderID:           input.OrderID,
		RecipientMemberID: input.RecipientMemberID,
		PayerMemberID:     input.PayerMemberID,
		CommissionType:    commissionType,
		OrderAmount:       models.NewMoneyFromDecimal(orderAmount),
		CommissionRate:    models.NewMoneyFromDecimal(rate),
		CommissionAmount:  models.NewMoneyFromDecimal(commissionAmount),
		Status:            constants.CommissionStatusPending,
		CalculationDate:   time.Now(),
	}
	if err := s.repo.Create(calculation); err != nil {
		return nil, err
	}
	return calculation, nil
}

// CreateOrderCalculations 按当前比例配置为订单生成整条分润链路的结算记录
// 同一 (订单, 受益人, 类型) 已存在时静默跳过，重复投递不会产生重复记录。
func (s *CommissionService) CreateOrderCalculations(orderID, payerMemberID uint, orderAmount models.Money, recipients []CommissionRecipient) error {
	if orderID == 0 || len(recipients) == 0 {
		return nil
	}
	amount := orderAmount.Decimal.Round(2)
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil
	}

	setting, err := s.settingService.GetCommissionSetting()
	if err != nil {
		return err
	}

	for _, recipient := range recipients {
		if recipient.MemberID == 0 || recipient.MemberID == payerMemberID {
			continue
		}
		rate, ok := setting.RateForType(recipient.CommissionType)
		if !ok || rate <= 0 {
			continue
		}

		input := CommissionCreateInput{
			OrderID:           orderID,
			RecipientMemberID: recipient.MemberID,
			PayerMemberID:     payerMemberID,
			CommissionType:    recipient.CommissionType,
			OrderAmount:       models.NewMoneyFromDecimal(amount),
			CommissionRate:    models.NewMoneyFromDecimal(decimal.NewFromFloat(rate)),
		}
		if _, err := s.CreateCalculation(input); err != nil {
			switch err {
			case ErrCommissionExists, ErrCommissionInvalid, ErrMemberNotFound, ErrMemberDisabled:
				logger.Debugw("commission_accrue_skipped",
					"order_id", orderID,
					"member_id", recipient.MemberID,
					"commission_type", recipient.CommissionType,
					"reason", err.Error(),
				)
				continue
			default:
				return err
			}
		}
	}
	return nil
}

// GetCalculation 查询结算记录
func (s *CommissionService) GetCalculation(id uint) (*models.CommissionCalculation, error) {
	row, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, ErrCommissionNotFound
	}
	return row, nil
}

// ListCalculations 分页查询结算记录
func (s *CommissionService) ListCalculations(filter repository.CommissionListFilter) ([]models.CommissionCalculation, int64, error) {
	return s.repo.List(filter)
}

// Confirm 确认结算记录并入账可用佣金
func (s *CommissionService) Confirm(id uint) (*models.CommissionCalculation, error) {
	var result *models.CommissionCalculation
	if err := s.repo.Transaction(func(tx *gorm.DB) error {
		row, err := s.confirmInTx(tx, id)
		if err != nil {
			return err
		}
		result = row
		return nil
	}); err != nil {
		return nil, err
	}
	return result, nil
}

// Cancel 取消待确认的结算记录
func (s *CommissionService) Cancel(id uint) (*models.CommissionCalculation, error) {
	var result *models.CommissionCalculation
	if err := s.repo.Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		row, err := repo.GetByIDForUpdate(id)
		if err != nil {
			return err
		}
		if row == nil {
			return ErrCommissionNotFound
		}
		if row.Status != constants.CommissionStatusPending {
			return ErrCommissionStatusInvalid
		}

		row.Status = constants.CommissionStatusCancelled
		row.UpdatedAt = time.Now()
		if err := repo.Update(row); err != nil {
			return err
		}
		result = row
		return nil
	}); err != nil {
		return nil, err
	}
	return result, nil
}

// ConfirmDueCalculations 批量确认超过确认延迟期的待确认记录
func (s *CommissionService) ConfirmDueCalculations(now time.Time) (int, error) {
	setting, err := s.settingService.GetCommissionSetting()
	if err != nil {
		return 0, err
	}
	cutoff := now.Add(-time.Duration(setting.ConfirmDelayDays) * 24 * time.Hour)

	confirmed := 0
	if err := s.repo.Transaction(func(tx *gorm.DB) error {
		rows, err := s.repo.WithTx(tx).ListPendingDueForUpdate(cutoff, commissionConfirmBatchLimit)
		if err != nil {
			return err
		}
		for i := range rows {
			if _, err := s.confirmInTx(tx, rows[i].ID); err != nil {
				return err
			}
			confirmed++
		}
		return nil
	}); err != nil {
		return confirmed, err
	}
	return confirmed, nil
}

// Stats 佣金结算统计
func (s *CommissionService) Stats() (CommissionStats, error) {
	stats := CommissionStats{
		ByStatus: make(map[string]CommissionStatsBucket),
		ByType:   make(map[string]CommissionStatsBucket),
	}

	statusRows, err := s.repo.StatusAggregates()
	if err != nil {
		return stats, err
	}
	total := decimal.Zero
	var totalCount int64
	for _, row := range statusRows {
		stats.ByStatus[row.Status] = CommissionStatsBucket{
			Count:  row.Count,
			Amount: models.NewMoneyFromDecimal(row.Amount),
		}
		total = total.Add(row.Amount)
		totalCount += row.Count
	}
	stats.Total = CommissionStatsBucket{
		Count:  totalCount,
		Amount: models.NewMoneyFromDecimal(total),
	}

	typeRows, err := s.repo.TypeAggregates()
	if err != nil {
		return stats, err
	}
	for _, row := range typeRows {
		stats.ByType[row.CommissionType] = CommissionStatsBucket{
			Count:  row.Count,
			Amount: models.NewMoneyFromDecimal(row.Amount),
		}
	}
	return stats, nil
}

func (s *CommissionService) confirmInTx(tx *gorm.DB, id uint) (*models.CommissionCalculation, error) {
	repo := s.repo.WithTx(tx)
	row, err := repo.GetByIDForUpdate(id)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, ErrCommissionNotFound
	}
	if row.Status != constants.CommissionStatusPending {
		return nil, ErrCommissionStatusInvalid
	}

	if _, _, err := s.balanceService.CreditAvailableInTx(tx, BalanceChangeInput{
		MemberID:  row.RecipientMemberID,
		Amount:    row.CommissionAmount,
		Reference: fmt.Sprintf("commission:%d:confirm", row.ID),
		Remark:    fmt.Sprintf("订单 %d 佣金确认", row.OrderID),
	}); err != nil {
		return nil, err
	}

	row.Status = constants.CommissionStatusConfirmed
	row.UpdatedAt = time.Now()
	if err := repo.Update(row); err != nil {
		return nil, err
	}
	return row, nil
}

func isValidCommissionType(commissionType string) bool {
	switch commissionType {
	case constants.CommissionTypeDirect,
		constants.CommissionTypeIndirect,
		constants.CommissionTypeDistributor,
		constants.CommissionTypeNetworkDistributor:
		return true
	default:
		return false
	}
}
