// Package reserve implements the standalone number-reservation state machine:
// cart creation, number lock, contact info, and cart confirmation. It is
// deliberately independent of the polling core and never invoked by it;
// payment and order completion stay out of scope.
package reserve

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

// State names a position in the reservation flow.
type State string

// Flow states, in order.
const (
	StateInitial         State = "initial"
	StateCartCreated     State = "cart_created"
	StateNumberLocked    State = "number_locked"
	StateContactAttached State = "contact_attached"
	StateConfirmed       State = "confirmed"
)

// GraphQLDoer posts one GraphQL operation. nova.Client satisfies this.
type GraphQLDoer interface {
	Do(ctx context.Context, operationName, query string, variables any) ([]byte, error)
}

// Contact identifies the person the reservation is made for.
type Contact struct {
	Name       string
	Email      string
	NationalID string
	Phone      string
	Address    string
	Zip        string
}

// Config holds the catalog identifiers and contact details the flow binds to
// the cart.
type Config struct {
	// SignupVariantID is the travel-pack item that seeds the cart.
	SignupVariantID string
	// PlanVariantID is the plan item the locked number is attached to.
	PlanVariantID string
	Contact       Contact
}

// Receipt summarizes a completed (or aborted) flow.
type Receipt struct {
	CartID string
	Number string
	State  State
}

// Flow walks the reservation state machine one step at a time. A Flow is
// single-use: construct one per reservation attempt.
type Flow struct {
	client GraphQLDoer
	cfg    Config
	logger *zap.Logger
	state  State
}

// NewFlow constructs a Flow.
func NewFlow(client GraphQLDoer, cfg Config, logger *zap.Logger) *Flow {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Flow{
		client: client,
		cfg:    cfg,
		logger: logger,
		state:  StateInitial,
	}
}

// State reports the flow's current position.
func (f *Flow) State() State {
	return f.state
}

const addToCartQuery = `mutation addMobileSignupToCart($input: AddToCartInput!) {
  addToCart(input: $input) {
    cart {
      id
      isValid
      items {
        id
        variantId
        purchaseInfo {
          service {
            phoneNumber
          }
        }
      }
    }
    error {
      code
      message
    }
  }
}`

const addContactInfoQuery = `mutation addContactInfo($input: AddContactInfoInput!) {
  addContactInfo(input: $input) {
    cart {
      id
      items {
        id
        variantId
        purchaseInfo {
          service {
            phoneNumber
          }
        }
      }
      contact {
        email
        msisdn
      }
    }
    error {
      code
      message
    }
  }
}`

const updateCartItemQuery = `mutation updateCartItem($input: UpdateCartItemInput!) {
  updateCartItem(input: $input) {
    cart {
      id
      isValid
      items {
        id
      }
    }
    error {
      code
      message
    }
  }
}`

type cartItem struct {
	ID        string `json:"id"`
	VariantID string `json:"variantId"`
}

type cartPayload struct {
	ID      string     `json:"id"`
	IsValid bool       `json:"isValid"`
	Items   []cartItem `json:"items"`
}

type remoteError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type mutationResult struct {
	Cart  *cartPayload `json:"cart"`
	Error *remoteError `json:"error"`
}

// Run executes the full flow for the given number and returns a receipt for
// the confirmed cart. Any step failure aborts the flow; the receipt carries
// the state reached so the operator knows where it stopped.
func (f *Flow) Run(ctx context.Context, number string) (Receipt, error) {
	receipt := Receipt{Number: number, State: f.state}

	cartID, signupItemID, err := f.createCart(ctx)
	if err != nil {
		return receipt, fmt.Errorf("create cart: %w", err)
	}
	f.state = StateCartCreated
	receipt.CartID = cartID
	receipt.State = f.state
	f.logger.Info("cart created", zap.String("cart_id", cartID))

	if err := f.lockNumber(ctx, cartID, signupItemID, number); err != nil {
		return receipt, fmt.Errorf("lock number: %w", err)
	}
	f.state = StateNumberLocked
	receipt.State = f.state
	f.logger.Info("number locked", zap.String("number", number))

	items, err := f.attachContact(ctx, cartID, number)
	if err != nil {
		return receipt, fmt.Errorf("attach contact: %w", err)
	}
	f.state = StateContactAttached
	receipt.State = f.state

	if err := f.confirmItems(ctx, cartID, items, number); err != nil {
		return receipt, fmt.Errorf("confirm items: %w", err)
	}
	f.state = StateConfirmed
	receipt.State = f.state
	f.logger.Info("reservation confirmed", zap.String("cart_id", cartID), zap.String("number", number))

	return receipt, nil
}

// createCart seeds a fresh cart with the signup item and returns the cart id
// plus the id of the created item.
func (f *Flow) createCart(ctx context.Context) (cartID, itemID string, err error) {
	variables := map[string]any{
		"input": map[string]any{
			"item": map[string]any{
				"variantId":    f.cfg.SignupVariantID,
				"quantity":     1,
				"purchaseInfo": map[string]any{},
			},
			"cartId": "",
		},
	}
	result, err := f.mutate(ctx, "addMobileSignupToCart", addToCartQuery, "addToCart", variables)
	if err != nil {
		return "", "", err
	}
	if result.Cart == nil || result.Cart.ID == "" {
		return "", "", fmt.Errorf("cart id missing from response")
	}
	if len(result.Cart.Items) == 0 {
		return "", "", fmt.Errorf("cart has no items")
	}
	return result.Cart.ID, result.Cart.Items[0].ID, nil
}

// lockNumber adds the plan item carrying the candidate number to the cart.
func (f *Flow) lockNumber(ctx context.Context, cartID, signupItemID, number string) error {
	variables := map[string]any{
		"input": map[string]any{
			"item": map[string]any{
				"variantId": f.cfg.PlanVariantID,
				"quantity":  1,
				"purchaseInfo": map[string]any{
					"service": map[string]any{
						"mobileSignupRightHolder": nil,
						"phoneNumber":             number,
						"isNewNumber":             true,
						"type":                    "Mobile",
						"isUnregistered":          true,
						"user": map[string]any{
							"name":        f.cfg.Contact.Name,
							"nationalId":  f.cfg.Contact.NationalID,
							"phoneNumber": number,
						},
					},
					"contract": map[string]any{
						"cartItemId": signupItemID,
						"type":       "New",
					},
				},
			},
			"cartId": cartID,
		},
	}
	_, err := f.mutate(ctx, "addMobileSignupToCart", addToCartQuery, "addToCart", variables)
	return err
}

// attachContact binds the contact info to the cart and returns the cart
// items for the confirmation step.
func (f *Flow) attachContact(ctx context.Context, cartID, number string) ([]cartItem, error) {
	variables := map[string]any{
		"input": map[string]any{
			"cartId": cartID,
			"contactInfo": map[string]any{
				"email":   f.cfg.Contact.Email,
				"msisdn":  number,
				"ssn":     f.cfg.Contact.NationalID,
				"name":    f.cfg.Contact.Name,
				"address": f.cfg.Contact.Address,
				"zip":     f.cfg.Contact.Zip,
			},
		},
	}
	result, err := f.mutate(ctx, "addContactInfo", addContactInfoQuery, "addContactInfo", variables)
	if err != nil {
		return nil, err
	}
	if result.Cart == nil {
		return nil, fmt.Errorf("cart missing from response")
	}
	return result.Cart.Items, nil
}

// confirmItems updates the plan item so the contact and contract bindings
// are final. Item ids are resolved by variant prefix.
func (f *Flow) confirmItems(ctx context.Context, cartID string, items []cartItem, number string) error {
	var planItemID, signupItemID string
	for _, item := range items {
		switch item.VariantID {
		case f.cfg.PlanVariantID:
			planItemID = item.ID
		case f.cfg.SignupVariantID:
			signupItemID = item.ID
		}
	}
	if planItemID == "" || signupItemID == "" {
		return fmt.Errorf("cart items unresolved: plan=%q signup=%q", planItemID, signupItemID)
	}

	variables := map[string]any{
		"input": map[string]any{
			"cartId": cartID,
			"item": map[string]any{
				"quantity":  1,
				"variantId": f.cfg.PlanVariantID,
				"id":        planItemID,
				"purchaseInfo": map[string]any{
					"contract": map[string]any{
						"cartItemId": signupItemID,
						"type":       "New",
					},
					"service": map[string]any{
						"type":                    "Mobile",
						"phoneNumber":             number,
						"isNewNumber":             true,
						"isUnregistered":          true,
						"portInDate":              "0001-01-01T00:00:00",
						"roofAmount":              nil,
						"departmentId":            nil,
						"invoiceExplanation":      nil,
						"mobileSignupRightHolder": nil,
						"user": map[string]any{
							"name":        f.cfg.Contact.Name,
							"nationalId":  f.cfg.Contact.NationalID,
							"email":       f.cfg.Contact.Email,
							"phoneNumber": number,
						},
					},
				},
			},
		},
	}
	_, err := f.mutate(ctx, "updateCartItem", updateCartItemQuery, "updateCartItem", variables)
	return err
}

// mutate posts one mutation and unwraps the named result field, surfacing
// the remote error field as a Go error.
func (f *Flow) mutate(ctx context.Context, operationName, query, resultField string, variables any) (mutationResult, error) {
	raw, err := f.client.Do(ctx, operationName, query, variables)
	if err != nil {
		return mutationResult{}, err
	}

	var envelope struct {
		Data map[string]mutationResult `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return mutationResult{}, fmt.Errorf("decode %s response: %w", operationName, err)
	}
	result, ok := envelope.Data[resultField]
	if !ok {
		return mutationResult{}, fmt.Errorf("%s result missing from response", resultField)
	}
	if result.Error != nil && result.Error.Message != "" {
		return mutationResult{}, fmt.Errorf("remote error: %s", result.Error.Message)
	}
	return result, nil
}
