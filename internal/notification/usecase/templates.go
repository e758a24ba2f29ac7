package usecase

import "github.com/shandysiswandi/easymed/internal/notification/entity"

type templateKey struct {
	trigger entity.TriggerKey
	channel entity.Channel
}

func defaultTemplates() map[templateKey]entity.Template {
	list := []entity.Template{
		{
			TriggerKey: entity.TriggerKeyUserWelcome,
			Channel:    entity.ChannelSMS,
			Body:       "Welcome to {{.company_name}}, {{.name}}! Your {{.role}} account is ready.",
		},
		{
			TriggerKey: entity.TriggerKeyUserWelcome,
			Channel:    entity.ChannelEmail,
			Subject:    "Welcome to EasyMed",
			Body: `<p>Hello {{.name}},</p>
<p>Your {{.company_name}} {{.role}} account is ready. Sign in any time with the phone number {{.phone}}.</p>
<p>Questions? Write to <a href="mailto:{{.support_email}}">{{.support_email}}</a>.</p>
<p>&copy; {{.year}} {{.company_name}}</p>`,
		},
		{
			TriggerKey: entity.TriggerKeyAdminAlert,
			Channel:    entity.ChannelEmail,
			Subject:    "New administrator sign-in",
			Body: `<p>An administrator session was opened for {{.email}} at {{.signed_in_at}}.</p>
<p>If this was not you, contact <a href="mailto:{{.support_email}}">{{.support_email}}</a> immediately.</p>
<p>&copy; {{.year}} {{.company_name}}</p>`,
		},
	}

	out := make(map[templateKey]entity.Template, len(list))
	for _, t := range list {
		out[templateKey{trigger: t.TriggerKey, channel: t.Channel}] = t
	}
	return out
}
