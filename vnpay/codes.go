package vnpay

import "fmt"

const SuccessCode = "00"

var responseMessages = map[string]string{
	"00": "Transaction successful",
	"07": "Amount debited, but the transaction is suspected of fraud",
	"09": "Card or account is not registered for internet banking",
	"10": "Card or account verification failed more than 3 times",
	"11": "Payment window expired, please try again",
	"12": "Card or account is locked",
	"13": "Wrong one-time password (OTP)",
	"24": "Customer cancelled the transaction",
	"51": "Insufficient account balance",
	"65": "Account exceeded its daily transaction limit",
	"75": "Paying bank is under maintenance",
	"79": "Wrong payment password entered too many times",
	"99": "Unknown error",
}

// ResponseMessage describes a gateway response code. Unknown codes keep the raw code.
func ResponseMessage(code string) string {
	if msg, ok := responseMessages[code]; ok {
		return msg
	}
	return fmt.Sprintf("Unknown error (code %s)", code)
}

func IsSuccess(code string) bool {
	return code == SuccessCode
}
