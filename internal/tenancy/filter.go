package tenancy

import (
	"fmt"
	"strings"

	"leasing_portal_backend/platform/apperr"
)

// Entity identifies a tenant-scoped entity type for predicate derivation.
type Entity string

const (
	EntityCompany            Entity = "company"
	EntityProperty           Entity = "property"
	EntityManager            Entity = "property_manager"
	EntityAssignment         Entity = "assignment"
	EntityChatbot            Entity = "chatbot"
	EntityFAQ                Entity = "faq"
	EntityConversation       Entity = "conversation"
	EntityMessage            Entity = "message"
	EntityNotification       Entity = "lead_notification"
	EntityWebsiteIntegration Entity = "website_integration"
)

// Predicate is a SQL condition with positional arguments. Repositories
// append it to the WHERE clause of every read and write on the entity, so
// an excluded row is simply not matched: updates and deletes affect zero
// rows rather than erroring, and existence never leaks across tenants.
type Predicate struct {
	SQL  string
	Args []any
}

// deniedPredicate matches no rows. Used when the context holds grants but
// none of them applies to the entity.
var deniedPredicate = Predicate{SQL: "FALSE"}

// Filter derives the row predicate for one entity type under the given
// context. Predicates reference the entity's table by its full name, so
// queries must not alias the target table. argOffset is the number of
// positional arguments already bound by the caller's query; predicate
// placeholders start at argOffset+1.
//
// A company grant and a manager grant are independent; when both are
// present their predicates combine with OR. An empty context is rejected
// outright.
func Filter(entity Entity, tctx Context, argOffset int) (Predicate, error) {
	if err := tctx.RequireGrant(); err != nil {
		return Predicate{}, err
	}

	b := &predicateBuilder{argIndex: argOffset}

	switch entity {
	case EntityCompany:
		b.companyGrant(tctx, "lp_company.id = %s")
	case EntityProperty:
		b.companyGrant(tctx, "lp_property.company_id = %s")
	case EntityManager:
		b.companyGrant(tctx, "lp_property_manager.company_id = %s")
		// A manager can always see their own record.
		b.managerGrant(tctx, "lp_property_manager.id = %s")
	case EntityAssignment:
		b.companyGrant(tctx, `EXISTS (
			SELECT 1 FROM lp_property tp
			WHERE tp.id = lp_property_manager_assignment.property_id AND tp.company_id = %s)`)
		b.managerGrant(tctx, "lp_property_manager_assignment.property_manager_id = %s")
	case EntityChatbot:
		b.companyGrant(tctx, `EXISTS (
			SELECT 1 FROM lp_property tp
			WHERE tp.id = lp_chatbot.property_id AND tp.company_id = %s)`)
	case EntityFAQ:
		b.companyGrant(tctx, `EXISTS (
			SELECT 1 FROM lp_property tp
			WHERE tp.id = lp_faq.property_id AND tp.company_id = %s)`)
	case EntityWebsiteIntegration:
		b.companyGrant(tctx, `EXISTS (
			SELECT 1 FROM lp_property tp
			WHERE tp.id = lp_website_integration.property_id AND tp.company_id = %s)`)
	case EntityConversation:
		b.companyGrant(tctx, `EXISTS (
			SELECT 1 FROM lp_chatbot tcb
			JOIN lp_property tp ON tp.id = tcb.property_id
			WHERE tcb.id = lp_conversation.chatbot_id AND tp.company_id = %s)`)
		b.managerGrant(tctx, `EXISTS (
			SELECT 1 FROM lp_chatbot tcb
			JOIN lp_property_manager_assignment ta ON ta.property_id = tcb.property_id
			WHERE tcb.id = lp_conversation.chatbot_id
			  AND ta.property_manager_id = %s
			  AND (ta.end_date IS NULL OR ta.end_date >= CURRENT_DATE))`)
	case EntityMessage:
		b.companyGrant(tctx, `EXISTS (
			SELECT 1 FROM lp_conversation tc
			JOIN lp_chatbot tcb ON tcb.id = tc.chatbot_id
			JOIN lp_property tp ON tp.id = tcb.property_id
			WHERE tc.id = lp_message.conversation_id AND tp.company_id = %s)`)
		b.managerGrant(tctx, `EXISTS (
			SELECT 1 FROM lp_conversation tc
			JOIN lp_chatbot tcb ON tcb.id = tc.chatbot_id
			JOIN lp_property_manager_assignment ta ON ta.property_id = tcb.property_id
			WHERE tc.id = lp_message.conversation_id
			  AND ta.property_manager_id = %s
			  AND (ta.end_date IS NULL OR ta.end_date >= CURRENT_DATE))`)
	case EntityNotification:
		b.companyGrant(tctx, `EXISTS (
			SELECT 1 FROM lp_conversation tc
			JOIN lp_chatbot tcb ON tcb.id = tc.chatbot_id
			JOIN lp_property tp ON tp.id = tcb.property_id
			WHERE tc.id = lp_lead_notification.conversation_id AND tp.company_id = %s)`)
		b.managerGrant(tctx, "lp_lead_notification.property_manager_id = %s")
	default:
		return Predicate{}, apperr.Internal(fmt.Sprintf("no access rule for entity %q", entity))
	}

	return b.predicate(), nil
}

type predicateBuilder struct {
	argIndex int
	clauses  []string
	args     []any
}

func (b *predicateBuilder) add(template string, arg any) {
	b.argIndex++
	b.clauses = append(b.clauses, fmt.Sprintf(template, fmt.Sprintf("$%d", b.argIndex)))
	b.args = append(b.args, arg)
}

func (b *predicateBuilder) companyGrant(tctx Context, template string) {
	if tctx.CompanyID != nil {
		b.add(template, *tctx.CompanyID)
	}
}

func (b *predicateBuilder) managerGrant(tctx Context, template string) {
	if tctx.ManagerID != nil {
		b.add(template, *tctx.ManagerID)
	}
}

func (b *predicateBuilder) predicate() Predicate {
	if len(b.clauses) == 0 {
		return deniedPredicate
	}
	if len(b.clauses) == 1 {
		return Predicate{SQL: "(" + b.clauses[0] + ")", Args: b.args}
	}
	return Predicate{SQL: "(" + strings.Join(b.clauses, " OR ") + ")", Args: b.args}
}
