package domaintest

import (
	"github.com/Amund211/blacksmith/internal/domain"
)

type customerRequestBuilder struct {
	request domain.CustomerRequest
}

func (b *customerRequestBuilder) WithName(name string) *customerRequestBuilder {
	b.request.Name = name
	return b
}

func (b *customerRequestBuilder) WithDialogue(dialogue string) *customerRequestBuilder {
	b.request.Dialogue = dialogue
	return b
}

func (b *customerRequestBuilder) WithType(itemType domain.ItemType) *customerRequestBuilder {
	b.request.Type = itemType
	return b
}

func (b *customerRequestBuilder) WithBoss(isBoss bool) *customerRequestBuilder {
	b.request.IsBoss = isBoss
	return b
}

func (b *customerRequestBuilder) Build() domain.CustomerRequest {
	return b.request
}

func NewCustomerRequestBuilder() *customerRequestBuilder {
	return &customerRequestBuilder{
		request: domain.CustomerRequest{
			Name:      "Aldric",
			Dialogue:  "I need something sharp before the tournament.",
			Type:      domain.ItemSword,
			IsBoss:    false,
			AvatarURL: "https://api.dicebear.com/9.x/pixel-art/svg?seed=knight2-42",
		},
	}
}
