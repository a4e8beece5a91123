package telegram

// Update is an incoming Bot API update delivered to the webhook.
// Only the fields the subscription protocol needs are decoded.
type Update struct {
	UpdateID int64    `json:"update_id"`
	Message  *Message `json:"message"`
}

// Message is an incoming chat message.
type Message struct {
	MessageID int64    `json:"message_id"`
	Chat      *Chat    `json:"chat"`
	Text      string   `json:"text"`
	Contact   *Contact `json:"contact"`
}

// Chat identifies the conversation a message belongs to.
type Chat struct {
	ID int64 `json:"id"`
}

// Contact is a phone contact shared through the contact-request keyboard.
type Contact struct {
	PhoneNumber string `json:"phone_number"`
	FirstName   string `json:"first_name"`
	UserID      int64  `json:"user_id"`
}

// ReplyMarkup covers the two keyboard shapes the bot uses: a one-time
// contact-request keyboard and keyboard removal after confirmation.
type ReplyMarkup struct {
	Keyboard        [][]KeyboardButton `json:"keyboard,omitempty"`
	ResizeKeyboard  bool               `json:"resize_keyboard,omitempty"`
	OneTimeKeyboard bool               `json:"one_time_keyboard,omitempty"`
	RemoveKeyboard  bool               `json:"remove_keyboard,omitempty"`
}

// KeyboardButton is a single reply keyboard button.
type KeyboardButton struct {
	Text           string `json:"text"`
	RequestContact bool   `json:"request_contact,omitempty"`
}

// ContactRequestKeyboard builds a one-time keyboard asking the user to share
// their phone number.
func ContactRequestKeyboard(buttonText string) *ReplyMarkup {
	return &ReplyMarkup{
		Keyboard:        [][]KeyboardButton{{{Text: buttonText, RequestContact: true}}},
		ResizeKeyboard:  true,
		OneTimeKeyboard: true,
	}
}

// RemoveKeyboard builds markup that removes any custom keyboard.
func RemoveKeyboard() *ReplyMarkup {
	return &ReplyMarkup{RemoveKeyboard: true}
}

// apiResponse is the Bot API envelope; Result is ignored.
type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
	ErrorCode   int    `json:"error_code"`
}
