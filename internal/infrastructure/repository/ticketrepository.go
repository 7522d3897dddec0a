package repository

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/helpdesk-inc/helpdesk/internal/domain/ticket"
	vo "github.com/helpdesk-inc/helpdesk/internal/domain/ticket/valueobjects"
	"github.com/helpdesk-inc/helpdesk/internal/infrastructure/persistence/mappers"
	"github.com/helpdesk-inc/helpdesk/internal/infrastructure/persistence/models"
	"github.com/helpdesk-inc/helpdesk/internal/shared/db"
	"github.com/helpdesk-inc/helpdesk/internal/shared/errors"
)

// allowedTicketOrderByFields defines the whitelist of allowed ORDER BY fields
// to prevent SQL injection attacks.
var allowedTicketOrderByFields = map[string]bool{
	"id":            true,
	"ticket_number": true,
	"title":         true,
	"status":        true,
	"priority":      true,
	"category":      true,
	"created_at":    true,
	"updated_at":    true,
}

type TicketRepository struct {
	db     *gorm.DB
	mapper mappers.TicketMapper
}

func NewTicketRepository(db *gorm.DB) *TicketRepository {
	return &TicketRepository{
		db:     db,
		mapper: mappers.NewTicketMapper(),
	}
}

var _ ticket.TicketRepository = (*TicketRepository)(nil)

func (r *TicketRepository) Save(ctx context.Context, t *ticket.Ticket) error {
	model := r.mapper.ToModel(t)
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.Create(model).Error; err != nil {
		return fmt.Errorf("failed to save ticket: %w", err)
	}

	return t.SetID(model.ID)
}

func (r *TicketRepository) Update(ctx context.Context, t *ticket.Ticket) error {
	model := r.mapper.ToModel(t)
	tx := db.GetTxFromContext(ctx, r.db)

	// Select("*") so a cleared assignee is written as NULL.
	result := tx.
		Model(&models.TicketModel{ID: model.ID}).
		Select("*").
		Omit("id", "created_at").
		Updates(model)
	if result.Error != nil {
		return fmt.Errorf("failed to update ticket: %w", result.Error)
	}

	// Note: RowsAffected may be 0 when updated values are identical to existing values.
	return nil
}

func (r *TicketRepository) Delete(ctx context.Context, ticketID uint) error {
	tx := db.GetTxFromContext(ctx, r.db)
	result := tx.Delete(&models.TicketModel{}, ticketID)
	if result.Error != nil {
		return fmt.Errorf("failed to delete ticket: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.NewNotFoundError("ticket not found")
	}
	return nil
}

func (r *TicketRepository) GetByID(ctx context.Context, ticketID uint) (*ticket.Ticket, error) {
	return r.first(db.GetTxFromContext(ctx, r.db), ticketID)
}

func (r *TicketRepository) GetByIDForUpdate(ctx context.Context, ticketID uint) (*ticket.Ticket, error) {
	tx := db.GetTxFromContext(ctx, r.db).Scopes(db.ForUpdate(ctx))
	return r.first(tx, ticketID)
}

func (r *TicketRepository) first(tx *gorm.DB, ticketID uint) (*ticket.Ticket, error) {
	var model models.TicketModel
	if err := tx.First(&model, ticketID).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NewNotFoundError("ticket not found", fmt.Sprintf("%d", ticketID))
		}
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}
	return r.mapper.ToDomain(&model)
}

func (r *TicketRepository) ExistsByNumber(ctx context.Context, number string) (bool, error) {
	var count int64
	err := db.GetTxFromContext(ctx, r.db).
		Model(&models.TicketModel{}).
		Where("ticket_number = ?", number).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check ticket number: %w", err)
	}
	return count > 0, nil
}

func applyTicketScope(query *gorm.DB, scope ticket.TicketScope) *gorm.DB {
	if scope.OwnerID != nil {
		query = query.Where("owner_id = ?", *scope.OwnerID)
	}
	if scope.AssigneeID != nil {
		query = query.Where("assignee_id = ?", *scope.AssigneeID)
	}
	return query
}

func (r *TicketRepository) List(ctx context.Context, filter ticket.TicketFilter) ([]*ticket.Ticket, int64, error) {
	query := applyTicketScope(db.GetTxFromContext(ctx, r.db).Model(&models.TicketModel{}), filter.TicketScope)

	if filter.Status != nil {
		query = query.Where("status = ?", filter.Status.String())
	}
	if filter.Priority != nil {
		query = query.Where("priority = ?", filter.Priority.String())
	}
	if filter.Category != nil {
		query = query.Where("category = ?", filter.Category.String())
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count tickets: %w", err)
	}

	sortBy := strings.ToLower(filter.SortBy)
	if allowedTicketOrderByFields[sortBy] {
		order := strings.ToUpper(filter.SortOrder)
		if order != "ASC" && order != "DESC" {
			order = "DESC"
		}
		query = query.Order(sortBy + " " + order)
	} else {
		query = query.Order("created_at DESC")
	}
	query = query.Order("id DESC").Scopes(db.Paginate(filter.Page, filter.PageSize))

	var ticketModels []models.TicketModel
	if err := query.Find(&ticketModels).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list tickets: %w", err)
	}

	tickets := make([]*ticket.Ticket, 0, len(ticketModels))
	for i := range ticketModels {
		t, err := r.mapper.ToDomain(&ticketModels[i])
		if err != nil {
			return nil, 0, err
		}
		tickets = append(tickets, t)
	}
	return tickets, total, nil
}

func (r *TicketRepository) CountByStatus(ctx context.Context, scope ticket.TicketScope) (map[vo.TicketStatus]int64, error) {
	var rows []struct {
		Status string
		Total  int64
	}
	query := applyTicketScope(db.GetTxFromContext(ctx, r.db).Model(&models.TicketModel{}), scope)
	if err := query.Select("status, COUNT(*) AS total").Group("status").Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to count tickets by status: %w", err)
	}

	counts := make(map[vo.TicketStatus]int64, len(vo.AllStatuses))
	for _, s := range vo.AllStatuses {
		counts[s] = 0
	}
	for _, row := range rows {
		counts[vo.TicketStatus(row.Status)] = row.Total
	}
	return counts, nil
}

var activeStatuses = []string{
	vo.StatusOpen.String(),
	vo.StatusInProgress.String(),
	vo.StatusPending.String(),
}

func (r *TicketRepository) CountUnassignedActive(ctx context.Context) (int64, error) {
	var count int64
	err := db.GetTxFromContext(ctx, r.db).
		Model(&models.TicketModel{}).
		Where("assignee_id IS NULL AND status IN ?", activeStatuses).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count unassigned tickets: %w", err)
	}
	return count, nil
}

func (r *TicketRepository) CountCriticalActive(ctx context.Context) (int64, error) {
	var count int64
	err := db.GetTxFromContext(ctx, r.db).
		Model(&models.TicketModel{}).
		Where("priority = ? AND status IN ?", vo.PriorityCritical.String(), activeStatuses).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count critical tickets: %w", err)
	}
	return count, nil
}
