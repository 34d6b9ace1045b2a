package notify

import (
	"fmt"
	"time"

	"salonbook/pkg/events"
	"salonbook/pkg/timegrid"
)

// Message texts delivered to Telegram chats. Wording matches what the
// salon's clients and masters are used to.

func formatDate(dateStr string) string {
	d, err := timegrid.ParseDate(dateStr, time.UTC)
	if err != nil {
		return dateStr
	}
	return d.Format("02.01.2006")
}

func ClientBookingCreated(e events.BookingCreated) string {
	return fmt.Sprintf(
		"📝 Запись создана!\n\n💇 Услуга: %s\n👤 Мастер: %s\n📅 Дата: %s\n⏰ Время: %s\n\n⏳ Ожидайте подтверждения от мастера.",
		e.ServiceName, e.MasterName, formatDate(e.Date), e.StartTime,
	)
}

func MasterNewBooking(e events.BookingCreated) string {
	return fmt.Sprintf(
		"🔔 Новая запись!\n\n👤 Клиент: %s\n💇 Услуга: %s\n📅 Дата: %s\n⏰ Время: %s\n\nПодтвердите или отклоните запись в приложении.",
		e.ClientName, e.ServiceName, formatDate(e.Date), e.StartTime,
	)
}

func ClientBookingConfirmed(e events.BookingConfirmed) string {
	return fmt.Sprintf(
		"✅ Запись подтверждена!\n\n💇 Услуга: %s\n👤 Мастер: %s\n📅 Дата: %s\n⏰ Время: %s\n\nЖдём вас! 💅",
		e.ServiceName, e.MasterName, formatDate(e.Date), e.StartTime,
	)
}

func ClientBookingCancelled(e events.BookingCancelled) string {
	reason := "мастером"
	if e.CancelledBy == events.CancelledByAdmin {
		reason = "администратором"
	}
	return fmt.Sprintf(
		"❌ Запись отменена %s\n\n💇 Услуга: %s\n👤 Мастер: %s\n📅 Дата: %s\n⏰ Время: %s\n\nВы можете записаться на другое время.",
		reason, e.ServiceName, e.MasterName, formatDate(e.Date), e.StartTime,
	)
}

func MasterBookingCancelled(e events.BookingCancelled) string {
	return fmt.Sprintf(
		"❌ Клиент отменил запись\n\n👤 Клиент: %s\n💇 Услуга: %s\n📅 Дата: %s\n⏰ Время: %s",
		e.ClientName, e.ServiceName, formatDate(e.Date), e.StartTime,
	)
}

func ClientBookingReminder(e events.BookingReminder) string {
	var lead string
	if e.HoursLeft >= 24 {
		lead = "завтра"
	} else {
		lead = fmt.Sprintf("через %d ч.", e.HoursLeft)
	}
	return fmt.Sprintf(
		"⏰ Напоминание о записи (%s)\n\n💇 Услуга: %s\n👤 Мастер: %s\n📅 Дата: %s\n⏰ Время: %s",
		lead, e.ServiceName, e.MasterName, formatDate(e.Date), e.StartTime,
	)
}
