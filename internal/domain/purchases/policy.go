package purchases

import (
	"errors"

	"github.com/google/cel-go/cel"

	"ladle/internal/core/apperror"
	"ladle/internal/core/id"
)

// ApprovalPolicy decides whether a freshly submitted candidate can skip
// the manual review queue.
type ApprovalPolicy interface {
	AutoApprove(c *PendingPurchaseCandidate) (bool, error)
}

// celPolicy evaluates a configured CEL expression against candidate
// fields. Example expression:
//
//	quantity <= 100.0 && price <= 500.0
type celPolicy struct {
	program cel.Program
}

// NewCELPolicy compiles expr once. An empty expression yields a policy
// that never auto-approves.
func NewCELPolicy(expr string) (ApprovalPolicy, error) {
	if expr == "" {
		return nopPolicy{}, nil
	}

	env, err := cel.NewEnv(
		cel.Variable("quantity", cel.DoubleType),
		cel.Variable("price", cel.DoubleType),
		cel.Variable("ingredient_known", cel.BoolType),
	)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, apperror.NewInvalidInput("invalid approval policy expression: " + issues.Err().Error())
	}
	if ast.OutputType() != cel.BoolType {
		return nil, apperror.NewInvalidInput("approval policy expression must evaluate to bool")
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}
	return &celPolicy{program: prg}, nil
}

func (p *celPolicy) AutoApprove(c *PendingPurchaseCandidate) (bool, error) {
	price, _ := c.Price.Float64()
	out, _, err := p.program.Eval(map[string]any{
		"quantity":         c.Quantity.Float64(),
		"price":            price,
		"ingredient_known": !id.IsNil(c.IngredientID),
	})
	if err != nil {
		return false, apperror.NewInternal(err)
	}
	ok, isBool := out.Value().(bool)
	if !isBool {
		return false, apperror.NewInternal(errors.New("approval policy returned non-bool result"))
	}
	return ok, nil
}

// nopPolicy routes everything to manual review.
type nopPolicy struct{}

func (nopPolicy) AutoApprove(*PendingPurchaseCandidate) (bool, error) { return false, nil }
