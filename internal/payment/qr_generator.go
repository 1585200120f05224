// Package payment builds the manual transfer instructions shown at checkout.
package payment

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"

	"buildnchill-shop/internal/config"
	"buildnchill-shop/internal/models"

	"github.com/skip2/go-qrcode"
)

const memoLength = 8

type QRGenerator struct {
	cfg  config.PaymentConfig
	size int
}

func NewQRGenerator(cfg config.PaymentConfig) *QRGenerator {
	return &QRGenerator{cfg: cfg, size: 256}
}

// Memo is the transfer description admins match against bank statements.
func Memo(orderID string) string {
	if len(orderID) > memoLength {
		return orderID[:memoLength]
	}
	return orderID
}

// Instructions returns bank details for the order. QR payments also get a
// VietQR image link and an inline PNG with the same details.
func (q *QRGenerator) Instructions(orderID string, amount int64, method string) (models.PaymentInfo, error) {
	info := models.PaymentInfo{
		BankName:    q.cfg.BankName,
		BankAccount: q.cfg.BankAccount,
		AccountName: q.cfg.AccountName,
		Amount:      amount,
		Memo:        Memo(orderID),
	}
	if method != models.PaymentMethodQR {
		return info, nil
	}

	info.QRImageURL = q.VietQRURL(amount, info.Memo)
	png, err := qrcode.Encode(q.transferText(info), qrcode.Medium, q.size)
	if err != nil {
		return info, fmt.Errorf("encode payment qr: %w", err)
	}
	info.QRCode = "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
	return info, nil
}

func (q *QRGenerator) VietQRURL(amount int64, memo string) string {
	if q.cfg.QRBaseURL == "" || q.cfg.BankAccount == "" {
		return ""
	}
	params := url.Values{}
	params.Set("amount", fmt.Sprint(amount))
	params.Set("addInfo", memo)
	params.Set("accountName", q.cfg.AccountName)
	return fmt.Sprintf("%s/%s-%s-compact2.png?%s",
		strings.TrimRight(q.cfg.QRBaseURL, "/"), q.cfg.BankCode, q.cfg.BankAccount, params.Encode())
}

func (q *QRGenerator) transferText(info models.PaymentInfo) string {
	return fmt.Sprintf("Ngân hàng: %s\nSố tài khoản: %s\nChủ tài khoản: %s\nSố tiền: %d\nNội dung: %s",
		info.BankName, info.BankAccount, info.AccountName, info.Amount, info.Memo)
}
