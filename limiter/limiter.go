package limiter

// 用于控制页面交互（点击邮箱图标）的节奏，避免短时间内大量点击触发目标站点的风控

import (
	"context"
	"sort"
	"time"

	"golang.org/x/time/rate"
)

// 限速器接口
type RateLimiter interface {
	Wait(context.Context) error // 阻塞直到拿到令牌或上下文被取消
	Limit() rate.Limit
}

// 将多个限速器按速率从小到大排序后组合成一个
func Multi(limiters ...RateLimiter) *multiLimiter {
	byLimit := func(i, j int) bool {
		return limiters[i].Limit() < limiters[j].Limit()
	}
	sort.Slice(limiters, byLimit)
	return &multiLimiter{limiters: limiters}
}

type multiLimiter struct {
	limiters []RateLimiter
}

// 所有限速器都放行才返回
func (l *multiLimiter) Wait(ctx context.Context) error {
	for _, l := range l.limiters {
		if err := l.Wait(ctx); err != nil {
			return err
		}
	}
	return nil
}

// 最严格的那个速率
func (l *multiLimiter) Limit() rate.Limit {
	if len(l.limiters) == 0 {
		return rate.Inf
	}
	return l.limiters[0].Limit()
}

// 每duration时间内允许eventCount次事件
func Per(eventCount int, duration time.Duration) rate.Limit {
	return rate.Every(duration / time.Duration(eventCount))
}

/*
输入每秒允许的次数，输出一个限速器

perSecond<=0表示不限速，返回一个永远立即放行的限速器；桶大小固定为1，点击之间的间隔均匀
*/
func New(perSecond float64) RateLimiter {
	if perSecond <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Limit(perSecond), 1)
}

/*
输入每秒和每分钟允许的次数，输出一个组合限速器

两个值都<=0时不限速；每分钟预算的桶大小等于perMinute，允许短时突发，但一分钟内总量不超过预算。
每秒限速和每分钟预算同时生效，Wait按最严格的限速器优先等待
*/
func NewBudget(perSecond float64, perMinute int) RateLimiter {
	var limiters []RateLimiter
	if perSecond > 0 {
		limiters = append(limiters, New(perSecond))
	}
	if perMinute > 0 {
		limiters = append(limiters, rate.NewLimiter(Per(perMinute, time.Minute), perMinute))
	}
	return Multi(limiters...)
}
