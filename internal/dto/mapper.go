package dto

import (
	"github.com/GlebRadaev/gigmarket/internal/domain"
)

func (r CreateContractRequestDTO) ToContract() *domain.Contract {
	c := &domain.Contract{
		TaskID:       r.TaskID,
		BidID:        r.BidID,
		FreelancerID: r.FreelancerID,
		Title:        r.Title,
		Description:  r.Description,
		Budget:       r.Budget,
		Milestones:   toMilestones(r.Milestones),
	}
	if r.StartDate != nil {
		c.StartDate = r.StartDate.UTC()
	}
	return c
}

func (r EditContractRequestDTO) ToContract() *domain.Contract {
	return &domain.Contract{
		Title:       r.Title,
		Description: r.Description,
		Budget:      r.Budget,
		Milestones:  toMilestones(r.Milestones),
	}
}

func toMilestones(in []MilestoneRequestDTO) []domain.Milestone {
	out := make([]domain.Milestone, len(in))
	for i, m := range in {
		out[i] = domain.Milestone{
			ID:          m.ID,
			Title:       m.Title,
			Description: m.Description,
			DueDate:     m.DueDate,
			Cost:        m.Cost,
		}
	}
	return out
}

func NewContractResponse(c *domain.Contract) ContractResponseDTO {
	resp := ContractResponseDTO{
		ID:           c.ID,
		TaskID:       c.TaskID,
		BidID:        c.BidID,
		ClientID:     c.ClientID,
		FreelancerID: c.FreelancerID,
		Title:        c.Title,
		Description:  c.Description,
		Budget:       c.Budget.InexactFloat64(),
		Status:       string(contractStatus(c)),
		StartDate:    c.StartDate,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
	for _, m := range c.Milestones {
		resp.Milestones = append(resp.Milestones, newMilestoneResponse(m))
	}
	return resp
}

// contractStatus derives the status when milestones are loaded. List views
// only carry the stored column, which transitions keep in sync.
func contractStatus(c *domain.Contract) domain.ContractStatus {
	if len(c.Milestones) == 0 && c.Status != "" {
		return c.Status
	}
	return c.DerivedStatus()
}

func newMilestoneResponse(m domain.Milestone) MilestoneResponseDTO {
	estimate := domain.SplitCommission(m.Cost)
	resp := MilestoneResponseDTO{
		ID:           m.ID,
		Position:     m.Position,
		Title:        m.Title,
		Description:  m.Description,
		DueDate:      m.DueDate,
		Cost:         m.Cost.InexactFloat64(),
		Status:       string(m.Status),
		EstimatedFee: estimate.PlatformFee.InexactFloat64(),
		EstimatedNet: estimate.Net.InexactFloat64(),
		FundedAt:     m.FundedAt,
	}
	if s := m.Completion; s != nil {
		resp.Completion = &SubmissionResponseDTO{
			Description:     s.Description,
			Files:           s.Files,
			SubmittedAt:     s.SubmittedAt,
			RejectionReason: s.RejectionReason,
			RejectedAt:      s.RejectedAt,
		}
	}
	if p := m.Payment; p != nil {
		resp.Payment = &PaymentDetailsDTO{
			Gross:       p.Gross.InexactFloat64(),
			PlatformFee: p.PlatformFee.InexactFloat64(),
			Net:         p.Net.InexactFloat64(),
		}
	}
	return resp
}

func NewContractListResponse(contracts []domain.Contract) []ContractResponseDTO {
	resp := make([]ContractResponseDTO, 0, len(contracts))
	for i := range contracts {
		resp = append(resp, NewContractResponse(&contracts[i]))
	}
	return resp
}

func NewPaymentsResponse(payments []domain.Payment) []PaymentResponseDTO {
	resp := make([]PaymentResponseDTO, 0, len(payments))
	for _, p := range payments {
		resp = append(resp, PaymentResponseDTO{
			ID:          p.ID,
			MilestoneID: p.MilestoneID,
			Gross:       p.Gross.InexactFloat64(),
			PlatformFee: p.PlatformFee.InexactFloat64(),
			Net:         p.Net.InexactFloat64(),
			Currency:    p.Currency,
			TransferID:  p.TransferID,
			CreatedAt:   p.CreatedAt,
		})
	}
	return resp
}
