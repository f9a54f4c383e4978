package flow

import (
	"fmt"
	"strings"

	"xuibot/core/telegram/format"
	"xuibot/internal/panel"
)

// User-facing texts. The bot speaks Persian; messages are sent with HTML
// parse mode, so any user- or panel-derived value is escaped before insertion.
const (
	msgWelcomeUnconfigured = "👋 به ربات مدیریت پنل 3x-ui خوش آمدید!\n\n" +
		"لطفا ابتدا اطلاعات پنل خود را تنظیم کنید.\n\n" +
		"آدرس پنل خود را وارد کنید (مثال: https://panel.example.com):"

	msgSetupIntro = "⚙️ راه‌اندازی پنل\n\nآدرس پنل خود را وارد کنید:\n(مثال: https://panel.example.com)"
	msgAskUser    = "✅ آدرس پنل ذخیره شد.\n\nنام کاربری پنل را وارد کنید:"
	msgAskPass    = "✅ نام کاربری ذخیره شد.\n\nرمز عبور پنل را وارد کنید:"
	msgConnecting = "⏳ در حال اتصال به پنل..."
	msgSetupDone  = "✅ اتصال با موفقیت برقرار شد!\n\nاز منوی زیر استفاده کنید:"

	msgNotConfigured = "❌ ابتدا باید پنل خود را تنظیم کنید.\nاز دستور /setup استفاده کنید."

	msgFetchingInbounds = "⏳ در حال دریافت لیست inbound ها..."
	msgNoInbounds       = "❌ هیچ inbound فعالی یافت نشد."
	msgPickInbound      = "📋 لیست Inbound های شما:\n\nلطفا یک inbound را برای افزودن کلاینت انتخاب کنید:"
	msgPickBulkInbound  = "📋 لیست Inbound های شما:\n\nلطفا یک inbound را برای افزودن دسته‌جمعی کلاینت‌ها انتخاب کنید:"
	msgInboundNotFound  = "❌ Inbound یافت نشد"
	msgInboundInfoErr   = "❌ خطا در دریافت اطلاعات inbound"

	msgStateLost      = "❌ خطا در پردازش. لطفا دوباره تلاش کنید."
	msgCreatingClient = "⏳ در حال ایجاد کلاینت..."

	msgNoValidClients = "❌ هیچ کلاینت معتبری یافت نشد.\n\nفرمت صحیح:\nUUID email\nمثال:\nf3ab7b0c-a63b-442e-89f1-00759638f75d ali"

	msgFetchingFile = "📄 در حال دریافت فایل..."
)

func msgWelcomeBack(panelURL string) string {
	return fmt.Sprintf("خوش آمدید! 🎉\n\nپنل شما: %s\n\nاز منوی زیر استفاده کنید:",
		format.Code(panelURL))
}

func msgInvalidURL(reason string) string {
	return fmt.Sprintf("❌ %s\n\nلطفا دوباره تلاش کنید:", reason)
}

func msgLoginFailed(err error) string {
	return fmt.Sprintf("❌ خطا در اتصال به پنل:\n%s\n\nبرای تلاش مجدد از دستور /setup استفاده کنید.",
		format.EscapeHTML(err.Error()))
}

func msgInboundsFailed(err error) string {
	return fmt.Sprintf("❌ خطا در دریافت لیست inbound ها:\n%s\n\nممکن است session منقضی شده باشد. از /setup استفاده کنید.",
		format.EscapeHTML(err.Error()))
}

func msgInboundSelected(remark string) string {
	return fmt.Sprintf("✅ Inbound انتخاب شد: %s\n\nحالا ایمیل کلاینت را وارد کنید:\n(مثال: user@example.com)",
		format.EscapeHTML(remark))
}

func msgBulkInboundSelected(remark string) string {
	return fmt.Sprintf("✅ Inbound انتخاب شد: %s\n\n"+
		"حالا لیست کلاینت‌ها را بفرستید:\n\n"+
		"📄 فایل .txt یا پیام متنی\n\n"+
		"فرمت:\nUUID email\n\n"+
		"مثال:\nf3ab7b0c-a63b-442e-89f1-00759638f75d ali\n88b552cc-b1e5-4da9-878c-e718d5594cbe negin",
		format.EscapeHTML(remark))
}

func msgClientCreated(email, uuid, protocol string, cfg panel.ClientConfig) string {
	return fmt.Sprintf("✅ کلاینت با موفقیت ایجاد شد!\n\n"+
		"📧 ایمیل: %s\n"+
		"🆔 UUID: %s\n"+
		"🔗 پروتکل: %s\n\n"+
		"📱 لینک Subscription:\n%s\n\n"+
		"⚙️ Config:\n%s",
		format.Code(email),
		format.Code(uuid),
		format.EscapeHTML(strings.ToUpper(protocol)),
		format.Code(cfg.SubscriptionURL),
		format.Code(cfg.ConfigURL))
}

func msgFileFailed(err error) string {
	return fmt.Sprintf("❌ خطا در خواندن فایل:\n%s", format.EscapeHTML(err.Error()))
}

func msgClientFailed(err error) string {
	return fmt.Sprintf("❌ خطا در ایجاد کلاینت:\n%s", format.EscapeHTML(err.Error()))
}

func msgBulkStarting(count int) string {
	return fmt.Sprintf("📊 پیدا شد: %d کلاینت\n\n⏳ در حال افزودن...", count)
}

func msgBulkProgress(done, total int) string {
	return fmt.Sprintf("⏳ پیشرفت: %d/%d", done, total)
}

// maxReportedErrors caps the per-item error lines in the bulk report.
const maxReportedErrors = 10

func msgBulkReport(success, failed int, errs []string) string {
	var b strings.Builder
	b.WriteString("✅ افزودن دسته‌جمعی تکمیل شد!\n\n")
	b.WriteString("📊 گزارش:\n")
	fmt.Fprintf(&b, "✅ موفق: %d\n", success)
	fmt.Fprintf(&b, "❌ ناموفق: %d\n", failed)

	if len(errs) > 0 {
		b.WriteString("\n❌ خطاها:\n")
		shown := errs
		if len(shown) > maxReportedErrors {
			shown = shown[:maxReportedErrors]
		}
		for _, e := range shown {
			fmt.Fprintf(&b, "- %s\n", format.EscapeHTML(e))
		}
		if extra := len(errs) - maxReportedErrors; extra > 0 {
			fmt.Fprintf(&b, "... و %d خطای دیگر", extra)
		}
	}
	return b.String()
}
