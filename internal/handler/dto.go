package handler

import (
	"github.com/shopspring/decimal"

	"github.com/tabshare/tabshare/internal/calculator"
	"github.com/tabshare/tabshare/internal/models"
)

// Request payloads. Decimal fields accept JSON numbers or strings; their
// sign constraints are checked in the handlers because validator tags
// only cover native numeric types.

type itemRequest struct {
	Name     string          `json:"name" validate:"required"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity" validate:"min=1"`
}

type createSessionRequest struct {
	Title    string          `json:"title"`
	Currency string          `json:"currency" validate:"required,iso4217"`
	Tax      decimal.Decimal `json:"tax"`
	Tip      decimal.Decimal `json:"tip"`
	Items    []itemRequest   `json:"items" validate:"required,min=1,dive"`
}

type joinRequest struct {
	Fingerprint string `json:"fingerprint" validate:"required"`
	Name        string `json:"name" validate:"required,max=64"`
}

type claimRequest struct {
	MemberID string `json:"memberId" validate:"required"`
}

type transitionRequest struct {
	To string `json:"to" validate:"required,oneof=open paid"`
}

type paidRequest struct {
	Paid bool `json:"paid"`
}

// Response payloads.

type itemResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Claimants []string        `json:"claimants"`
}

type memberResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	AvatarSeed string `json:"avatarSeed"`
	IsPaid     bool   `json:"isPaid"`
}

type settlementResponse struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	TaxShare decimal.Decimal `json:"taxShare"`
	TipShare decimal.Decimal `json:"tipShare"`
	Total    decimal.Decimal `json:"total"`
}

type settlementSummaryResponse struct {
	Members         map[string]settlementResponse `json:"members"`
	BillSubtotal    decimal.Decimal               `json:"billSubtotal"`
	ClaimedSubtotal decimal.Decimal               `json:"claimedSubtotal"`
	Unclaimed       decimal.Decimal               `json:"unclaimed"`
}

type sessionResponse struct {
	ID         string                    `json:"id"`
	Title      string                    `json:"title"`
	Currency   string                    `json:"currency"`
	Tax        decimal.Decimal           `json:"tax"`
	Tip        decimal.Decimal           `json:"tip"`
	Status     string                    `json:"status"`
	CreatedAt  int64                     `json:"createdAt"`
	Items      []itemResponse            `json:"items"`
	Members    []memberResponse          `json:"members"`
	Settlement settlementSummaryResponse `json:"settlement"`
}

type claimResponse struct {
	ItemID    string `json:"itemId"`
	MemberID  string `json:"memberId"`
	CreatedAt int64  `json:"createdAt"`
}

func toItemResponse(item models.Item) itemResponse {
	claimants := item.Claimants
	if claimants == nil {
		claimants = []string{}
	}
	return itemResponse{
		ID:        item.ID,
		Name:      item.Name,
		Price:     item.Price,
		Quantity:  item.Quantity,
		Claimants: claimants,
	}
}

func toMemberResponse(member models.Member) memberResponse {
	return memberResponse{
		ID:         member.ID,
		Name:       member.Name,
		AvatarSeed: member.AvatarSeed,
		IsPaid:     member.IsPaid,
	}
}

func toSessionResponse(session *models.Session, settlements map[string]*calculator.Settlement, summary calculator.Summary) sessionResponse {
	resp := sessionResponse{
		ID:        session.ID,
		Title:     session.Title,
		Currency:  session.Currency,
		Tax:       session.Tax,
		Tip:       session.Tip,
		Status:    string(session.Status),
		CreatedAt: session.CreatedAt,
		Items:     []itemResponse{},
		Members:   []memberResponse{},
		Settlement: settlementSummaryResponse{
			Members:         map[string]settlementResponse{},
			BillSubtotal:    summary.BillSubtotal,
			ClaimedSubtotal: summary.ClaimedSubtotal,
			Unclaimed:       summary.Unclaimed,
		},
	}
	for _, item := range session.Items {
		resp.Items = append(resp.Items, toItemResponse(item))
	}
	for _, member := range session.Members {
		resp.Members = append(resp.Members, toMemberResponse(member))
	}
	for memberID, s := range settlements {
		resp.Settlement.Members[memberID] = settlementResponse{
			Subtotal: s.Subtotal,
			TaxShare: s.TaxShare,
			TipShare: s.TipShare,
			Total:    s.Total,
		}
	}
	return resp
}
