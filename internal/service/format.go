package service

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// 价格展示沿用尼日利亚英语的千分位规则
var pricePrinter = message.NewPrinter(language.MustParse("en-NG"))

// FormatPrice 格式化价格，如 1234.5 → ₦1,234.50
func FormatPrice(amount float64) string {
	return "₦" + pricePrinter.Sprintf("%.2f", amount)
}
