package compose

// Strings is the localized string table the composer renders with. The
// table is supplied from configuration; DefaultStrings carries the stock
// labels.
type Strings struct {
	PreviewPrompt    string
	ButtonFallback   string
	ConfirmFallback  string
	ConfirmTitle     string
	ButtonRead       string
	ButtonShowUnread string
	ButtonRemind     string
	ButtonClose      string
	ButtonOK         string
	ButtonCancel     string
	ReadTitle        string // fmt with acknowledger count
	UnreadTitle      string // fmt with unread count
	EveryoneRead     string
	Canceled         string
	Success          string
	ReminderSent     string
	ReminderNotice   string // fmt with sender mention and message URL
	BotNotMember     string
	GenericError     string
	DMNotAllowed     string
	EmptyText        string
}

// DefaultStrings returns the stock string table.
func DefaultStrings() Strings {
	return Strings{
		PreviewPrompt:    "Preview:",
		ButtonFallback:   "Read confirmation button.",
		ConfirmFallback:  "Confirmation of read confirmation button.",
		ConfirmTitle:     "既読ボタンを作成します",
		ButtonRead:       "既読",
		ButtonShowUnread: "未読者を表示",
		ButtonRemind:     "未読者にリマインド",
		ButtonClose:      "閉じる",
		ButtonOK:         "OK",
		ButtonCancel:     "Cancel",
		ReadTitle:        "既読(%d)",
		UnreadTitle:      "未読(%d)",
		EveryoneRead:     "Everyone has read this message!",
		Canceled:         "Canceled :wink:",
		Success:          "Success!",
		ReminderSent:     "Reminder sent!",
		ReminderNotice:   "<@%s>さんのメッセージに既読をつけてください :bow:\n%s",
		BotNotMember:     "Bot should be part of this channel :persevere: \nPlease `/invite @kidoku` to use `/kidoku` command here.",
		GenericError:     "Sorry, something went wrong.",
		DMNotAllowed:     ":x: `/kidoku` cannot be used in Direct messages!",
		EmptyText:        ":x: Please specify your message!",
	}
}

// StringsWithOverrides merges message overrides from configuration onto the
// defaults. Unknown keys are ignored.
func StringsWithOverrides(overrides map[string]string) Strings {
	s := DefaultStrings()
	for k, v := range overrides {
		switch k {
		case "preview_prompt":
			s.PreviewPrompt = v
		case "confirm_title":
			s.ConfirmTitle = v
		case "button_read":
			s.ButtonRead = v
		case "button_show_unread":
			s.ButtonShowUnread = v
		case "button_remind":
			s.ButtonRemind = v
		case "button_close":
			s.ButtonClose = v
		case "button_ok":
			s.ButtonOK = v
		case "button_cancel":
			s.ButtonCancel = v
		case "read_title":
			s.ReadTitle = v
		case "unread_title":
			s.UnreadTitle = v
		case "everyone_read":
			s.EveryoneRead = v
		case "canceled":
			s.Canceled = v
		case "success":
			s.Success = v
		case "reminder_sent":
			s.ReminderSent = v
		case "reminder_notice":
			s.ReminderNotice = v
		case "bot_not_member":
			s.BotNotMember = v
		case "generic_error":
			s.GenericError = v
		case "dm_not_allowed":
			s.DMNotAllowed = v
		case "empty_text":
			s.EmptyText = v
		}
	}
	return s
}
