package settings

import "context"

// Setting keys. The contactus_ prefix is kept from the module's release
// history so existing installations upgrade in place.
const (
	KeyVersion = "contactus_version"

	KeyNotifyRecipients  = "contactus_notify_recipients"
	KeyAuthor            = "contactus_author"
	KeyAuthorOnly        = "contactus_author_only"
	KeySendWithUserEmail = "contactus_send_with_user_email"
	KeyCreateZip         = "contactus_create_zip"
	KeyDeleteZip         = "contactus_delete_zip"

	KeyNotifySubject                 = "contactus_notify_subject"
	KeyNotifyBody                    = "contactus_notify_body"
	KeyConfirmationEnabled           = "contactus_confirmation_enabled"
	KeyConfirmationSubject           = "contactus_confirmation_subject"
	KeyConfirmationBody              = "contactus_confirmation_body"
	KeyConfirmationNewsletterSubject = "contactus_confirmation_newsletter_subject"
	KeyConfirmationNewsletterBody    = "contactus_confirmation_newsletter_body"
	KeyToAuthorSubject               = "contactus_to_author_subject"
	KeyToAuthorBody                  = "contactus_to_author_body"
	KeyAntispam                      = "contactus_antispam"
	KeyQuestions                     = "contactus_questions"
	KeyConsentLabel                  = "contactus_consent_label"
	KeyAppendResourceShow            = "contactus_append_resource_show"
	KeyAppendItemsBrowse             = "contactus_append_items_browse"
)

// GlobalSettings are the instance-wide options.
type GlobalSettings struct {
	// NotifyRecipients is the default recipient list; the first address
	// is also the confirmation sender.
	NotifyRecipients []string
	// Author selects where the author email of a resource is found:
	// "disabled", "owner", or a property term.
	Author string
	// AuthorOnly suppresses the admin notification when a message is
	// routed to the resource author.
	AuthorOnly bool
	// SendWithUserEmail uses the visitor address as mail sender. Most
	// providers reject such mail as spam.
	SendWithUserEmail bool
	// CreateZip is the derivative size packaged for download:
	// original, large, medium or square.
	CreateZip string
	// DeleteZip is the retention of generated zip packages, in days.
	DeleteZip int
}

// SiteSettings are the per-site options, mostly mail templates.
type SiteSettings struct {
	NotifyRecipients              []string
	NotifySubject                 string
	NotifyBody                    string
	ConfirmationEnabled           bool
	ConfirmationSubject           string
	ConfirmationBody              string
	ConfirmationNewsletterSubject string
	ConfirmationNewsletterBody    string
	ToAuthorSubject               string
	ToAuthorBody                  string
	Antispam                      bool
	Questions                     map[string]string
	ConsentLabel                  string
	AppendResourceShow            []string
	AppendItemsBrowse             bool
}

// DefaultGlobal returns the defaults written at install time.
func DefaultGlobal() GlobalSettings {
	return GlobalSettings{
		NotifyRecipients: []string{},
		Author:           "disabled",
		CreateZip:        "original",
		DeleteZip:        30,
	}
}

// DefaultSite returns the per-site defaults written at install time.
func DefaultSite() SiteSettings {
	return SiteSettings{
		NotifyRecipients: []string{},
		NotifyBody: `A user has contacted you.

email: {email}
name: {name}
ip: {ip}

{newsletter}
subject: {subject}
message:

{message}`,
		ConfirmationEnabled: true,
		ConfirmationSubject: "Confirmation contact",
		ConfirmationBody: `Hi {name},

Thanks to contact us!

We will answer you as soon as possible.

Sincerely,

{main_title}
{main_url}

--

{newsletter}
Your message:
Subject: {subject}

{message}`,
		ConfirmationNewsletterSubject: "Subscription to newsletter of {main_title}",
		ConfirmationNewsletterBody: `Hi,

Thank you for subscribing to our newsletter.

Sincerely,`,
		ToAuthorSubject: "Message to the author",
		ToAuthorBody: `Hi {user_name},

The visitor {name} ({email} made the following request about a resource on {main_title}:

Thanks to reply directly to the email above and do not use "reply".

Sincerely,

--

From: {name} <{email}>
Subject: {subject}

{message}`,
		Antispam: true,
		Questions: map[string]string{
			"How many are zero plus 1 (in number)?":  "1",
			"How many are one plus 1 (in number)?":   "2",
			"How many are one plus 2 (in number)?":   "3",
			"How many are one plus 3 (in number)?":   "4",
			"How many are two plus 1 (in number)?":   "3",
			"How many are two plus 2 (in number)?":   "4",
			"How many are two plus 3 (in number)?":   "5",
			"How many are three plus 1 (in number)?": "4",
			"How many are three plus 2 (in number)?": "5",
			"How many are three plus 3 (in number)?": "6",
		},
		ConsentLabel:       "I allow the site owner to store my name and my email to answer to this message.",
		AppendResourceShow: []string{},
	}
}

// LoadGlobal reads the instance settings, falling back to defaults for
// keys that were never written.
func LoadGlobal(ctx context.Context, store Store) (GlobalSettings, error) {
	g := DefaultGlobal()
	if _, err := store.Get(ctx, KeyNotifyRecipients, &g.NotifyRecipients); err != nil {
		return g, err
	}
	if _, err := store.Get(ctx, KeyAuthor, &g.Author); err != nil {
		return g, err
	}
	if _, err := store.Get(ctx, KeyAuthorOnly, &g.AuthorOnly); err != nil {
		return g, err
	}
	if _, err := store.Get(ctx, KeySendWithUserEmail, &g.SendWithUserEmail); err != nil {
		return g, err
	}
	if _, err := store.Get(ctx, KeyCreateZip, &g.CreateZip); err != nil {
		return g, err
	}
	if _, err := store.Get(ctx, KeyDeleteZip, &g.DeleteZip); err != nil {
		return g, err
	}
	return g, nil
}

// SaveGlobal writes every instance setting.
func SaveGlobal(ctx context.Context, store Store, g GlobalSettings) error {
	pairs := []struct {
		key   string
		value any
	}{
		{KeyNotifyRecipients, g.NotifyRecipients},
		{KeyAuthor, g.Author},
		{KeyAuthorOnly, g.AuthorOnly},
		{KeySendWithUserEmail, g.SendWithUserEmail},
		{KeyCreateZip, g.CreateZip},
		{KeyDeleteZip, g.DeleteZip},
	}
	for _, p := range pairs {
		if err := store.Set(ctx, p.key, p.value); err != nil {
			return err
		}
	}
	return nil
}

// LoadSite reads the settings of one site, falling back to defaults.
func LoadSite(ctx context.Context, store SiteStore, siteID uint64) (SiteSettings, error) {
	s := DefaultSite()
	fields := []struct {
		key string
		out any
	}{
		{KeyNotifyRecipients, &s.NotifyRecipients},
		{KeyNotifySubject, &s.NotifySubject},
		{KeyNotifyBody, &s.NotifyBody},
		{KeyConfirmationEnabled, &s.ConfirmationEnabled},
		{KeyConfirmationSubject, &s.ConfirmationSubject},
		{KeyConfirmationBody, &s.ConfirmationBody},
		{KeyConfirmationNewsletterSubject, &s.ConfirmationNewsletterSubject},
		{KeyConfirmationNewsletterBody, &s.ConfirmationNewsletterBody},
		{KeyToAuthorSubject, &s.ToAuthorSubject},
		{KeyToAuthorBody, &s.ToAuthorBody},
		{KeyAntispam, &s.Antispam},
		{KeyQuestions, &s.Questions},
		{KeyConsentLabel, &s.ConsentLabel},
		{KeyAppendResourceShow, &s.AppendResourceShow},
		{KeyAppendItemsBrowse, &s.AppendItemsBrowse},
	}
	for _, f := range fields {
		if _, err := store.Get(ctx, siteID, f.key, f.out); err != nil {
			return s, err
		}
	}
	return s, nil
}
