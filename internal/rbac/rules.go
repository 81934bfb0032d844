package rbac

// Default policy. Evaluators only score; admins own events, rubrics and
// certificate emission. Attendees exist for cross-role exclusion and
// attendance certificates only.
var RolePermissions = map[string][]string{
	"participant": {
		"event:view",
		"criteria:view",
		"inscription:self",
		"podium:view",
		"detail:view-own",
		"certs:eligibility-own",
		"user:change_password",
	},
	"evaluator": {
		"event:view",
		"criteria:view",
		"criteria:manage", // event policy decides whether evaluators may edit the rubric
		"inscription:self",
		"score:put",
		"score:delete",
		"score:view",
		"podium:view",
		"detail:view",
		"certs:eligibility-own",
		"user:change_password",
	},
	"attendee": {
		"event:view",
		"inscription:self",
		"certs:eligibility-own",
		"user:change_password",
	},
	"admin": {
		"*", // everything
	},
}
