package wire

// Directive is the named operation carried in an outbound frame's meta block.
type Directive string

// Platform-level directives.
const (
	DirectiveEnvironment  Directive = "platform_environment"
	DirectiveComponents   Directive = "platform_components"
	DirectiveStateRequest Directive = "platform_applications_staterequest"
	DirectiveTransfer     Directive = "platform_applications_transfer"
)

// Peripheral directives. Each targets the component named in meta.componentID.
const (
	DirectiveQuery   Directive = "peripherals_query"
	DirectiveEnable  Directive = "peripherals_userpresent_enable"
	DirectiveDisable Directive = "peripherals_userpresent_disable"
	DirectiveOffer   Directive = "peripherals_userpresent_offer"
	DirectiveCancel  Directive = "peripherals_cancel"
	DirectiveSetup   Directive = "peripherals_setup"
	DirectiveSend    Directive = "peripherals_send"
)

// Announcement directives, addressed to the announcement component.
const (
	DirectiveAnnouncementPlay   Directive = "peripherals_announcement_play"
	DirectiveAnnouncementPause  Directive = "peripherals_announcement_pause"
	DirectiveAnnouncementResume Directive = "peripherals_announcement_resume"
	DirectiveAnnouncementStop   Directive = "peripherals_announcement_stop"
)
