package tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"

	logx "github.com/cs-support-assistant/server/pkg/logger"
)

// ===================================
// Payment retry tools
// ===================================

// failedPaymentStatus is the only last-payment status that permits a retry.
const failedPaymentStatus = "failed"

// retryDecision applies the payment retry rule: the last attempt must be in
// the failed state and the cooldown window must have elapsed. A missing
// attempt timestamp permits an immediate retry.
func retryDecision(status string, lastAttempt *time.Time, now time.Time, cooldown time.Duration) (allowed bool, reason string, nextRetryAfter time.Time) {
	if strings.ToLower(status) != failedPaymentStatus {
		return false, fmt.Sprintf("Status is '%s' not 'Failed'.", strings.ToLower(status)), time.Time{}
	}

	next := now
	if lastAttempt != nil {
		next = lastAttempt.UTC().Add(cooldown)
	}

	if now.Before(next) {
		return false, "Cooldown not passed", next
	}
	return true, "Cooldown passed", next
}

type LastPaymentStatusInput struct {
	OrderID int `json:"order_id"`
}

type LastPaymentStatusOutput struct {
	Found         bool   `json:"found"`
	OrderID       int    `json:"order_id"`
	Status        string `json:"status,omitempty"`
	LastAttempt   string `json:"last_attempt,omitempty"`
	FailureCode   string `json:"failure_code,omitempty"`
	FailureReason string `json:"failure_reason,omitempty"`
}

func createLastPaymentStatusTool(deps *Deps) tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolLastPaymentStatus,
			Desc: "Get the last payment attempt for an order: status, attempt time and failure details if the attempt failed.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"order_id": {
					Type:     "number",
					Desc:     "Numeric order identifier.",
					Required: true,
				},
			}),
		},
		func(ctx context.Context, in *LastPaymentStatusInput) (*LastPaymentStatusOutput, error) {
			payment, err := deps.Store.LastPayment(ctx, in.OrderID)
			if err != nil {
				logx.Error().Err(err).Str("tool", ToolLastPaymentStatus).Int("order_id", in.OrderID).
					Msg("Store lookup failed; returning not found")
				return &LastPaymentStatusOutput{Found: false, OrderID: in.OrderID}, nil
			}
			if payment == nil {
				return &LastPaymentStatusOutput{Found: false, OrderID: in.OrderID}, nil
			}

			return &LastPaymentStatusOutput{
				Found:         true,
				OrderID:       in.OrderID,
				Status:        payment.Status,
				LastAttempt:   formatTimePtr(payment.LastAttempt),
				FailureCode:   deref(payment.FailureCode),
				FailureReason: deref(payment.FailureReason),
			}, nil
		},
	)
}

type CanRetryPaymentInput struct {
	OrderID         int `json:"order_id"`
	CooldownMinutes int `json:"cooldown_minutes,omitempty"`
}

type CanRetryPaymentOutput struct {
	Allowed        bool   `json:"allowed"`
	OrderID        int    `json:"order_id"`
	Reason         string `json:"reason"`
	NextRetryAfter string `json:"next_retry_after,omitempty"`
}

func createCanRetryPaymentTool(deps *Deps) tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolCanRetryPayment,
			Desc: "Decide whether a payment retry can be suggested, based on the last failed attempt time and the retry cooldown window.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"order_id": {
					Type:     "number",
					Desc:     "Numeric order identifier.",
					Required: true,
				},
				"cooldown_minutes": {
					Type: "number",
					Desc: "Optional cooldown override in minutes.",
				},
			}),
		},
		func(ctx context.Context, in *CanRetryPaymentInput) (*CanRetryPaymentOutput, error) {
			payment, err := deps.Store.LastPayment(ctx, in.OrderID)
			if err != nil {
				logx.Error().Err(err).Str("tool", ToolCanRetryPayment).Int("order_id", in.OrderID).
					Msg("Store lookup failed; denying retry")
				return &CanRetryPaymentOutput{Allowed: false, OrderID: in.OrderID, Reason: "No payments found"}, nil
			}
			if payment == nil {
				return &CanRetryPaymentOutput{Allowed: false, OrderID: in.OrderID, Reason: "No payments found"}, nil
			}

			cooldownMinutes := in.CooldownMinutes
			if cooldownMinutes <= 0 {
				cooldownMinutes = deps.Policy.PaymentCooldownMinutes
			}

			allowed, reason, next := retryDecision(
				payment.Status, payment.LastAttempt, deps.now().UTC(),
				time.Duration(cooldownMinutes)*time.Minute,
			)

			out := &CanRetryPaymentOutput{Allowed: allowed, OrderID: in.OrderID, Reason: reason}
			if !next.IsZero() {
				out.NextRetryAfter = formatTime(next)
			}
			return out, nil
		},
	)
}

type PaymentRetryStepsInput struct {
	OrderID         int    `json:"order_id"`
	PreferredMethod string `json:"preferred_method,omitempty"`
}

type PaymentRetryStepsOutput struct {
	OK            bool     `json:"ok"`
	OrderID       int      `json:"order_id"`
	Message       string   `json:"message,omitempty"`
	Steps         []string `json:"steps,omitempty"`
	LastAttempt   string   `json:"last_attempt,omitempty"`
	FailureCode   string   `json:"failure_code,omitempty"`
	FailureReason string   `json:"failure_reason,omitempty"`
}

func createPaymentRetryStepsTool(deps *Deps) tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolPaymentRetrySteps,
			Desc: "Return user-facing steps for retrying payment when the last attempt failed.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"order_id": {
					Type:     "number",
					Desc:     "Numeric order identifier.",
					Required: true,
				},
				"preferred_method": {
					Type: "string",
					Desc: "Optional preferred payment method, e.g. CreditCard or PayPal.",
				},
			}),
		},
		func(ctx context.Context, in *PaymentRetryStepsInput) (*PaymentRetryStepsOutput, error) {
			payment, err := deps.Store.LastPayment(ctx, in.OrderID)
			if err != nil {
				logx.Error().Err(err).Str("tool", ToolPaymentRetrySteps).Int("order_id", in.OrderID).
					Msg("Store lookup failed; returning no payment info")
				return &PaymentRetryStepsOutput{OK: false, OrderID: in.OrderID, Message: "No payment info found."}, nil
			}
			if payment == nil {
				return &PaymentRetryStepsOutput{OK: false, OrderID: in.OrderID, Message: "No payment info found."}, nil
			}
			if strings.ToLower(payment.Status) != failedPaymentStatus {
				return &PaymentRetryStepsOutput{OK: false, OrderID: in.OrderID, Message: "Payment is not in 'Failed' state."}, nil
			}

			method := in.PreferredMethod
			if method == "" {
				method = "рекомендуется: CreditCard"
			}
			return &PaymentRetryStepsOutput{
				OK:      true,
				OrderID: in.OrderID,
				Steps: []string{
					"Откройте страницу заказа.",
					"Нажмите «Повторить платёж».",
					fmt.Sprintf("Выберите метод оплаты (%s).", method),
					"Подтвердите оплату.",
				},
				LastAttempt:   formatTimePtr(payment.LastAttempt),
				FailureCode:   deref(payment.FailureCode),
				FailureReason: deref(payment.FailureReason),
			}, nil
		},
	)
}
