package dto

type PayMilestoneRequestDTO struct {
	PaymentMethod string `json:"payment_method" validate:"required,notblank,max=255" example:"pm_card_visa"`
}

type SubmitMilestoneRequestDTO struct {
	Description string   `json:"description" validate:"required,notblank,max=5000" example:"Wireframes attached"`
	Files       []string `json:"files" validate:"max=20,dive,required,max=2048" example:"https://files.example.com/wireframes.pdf"`
}

type RejectMilestoneRequestDTO struct {
	Reason string `json:"reason" validate:"required,notblank,max=2000" example:"scope incomplete"`
}
