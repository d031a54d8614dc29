package aiscore

import (
	"fmt"
	"strings"

	"stockscore/internal/domain/score"
	"stockscore/internal/scoring"
)

const systemPrompt = `You are a financial data API for Indian NSE (National Stock Exchange) stocks. Always respond with valid JSON only. No markdown, no explanation text, no code fences. Just raw JSON.`

const narrativeSystemPrompt = `You are an equity research analyst covering Indian NSE stocks. Answer in plain prose, at most two short paragraphs, with no markdown and no code fences.`

func metricsPrompt(ticker string) string {
	return fmt.Sprintf(`Provide comprehensive scoring metrics for the NSE India stock "%[1]s" to evaluate as an investment. Return a JSON object with this exact structure:

{
  "valuation": {
    "peRatio": number or null,
    "sectorAvgPE": number or null,
    "pbRatio": number or null,
    "evToEbitda": number or null,
    "dividendYield": number or null (as percentage)
  },
  "growth": {
    "revenueGrowthYoY": number or null (percentage),
    "epsGrowthYoY": number or null (percentage),
    "netIncomeGrowthYoY": number or null (percentage)
  },
  "profitability": {
    "roe": number or null (percentage, Return on Equity),
    "operatingMargin": number or null (percentage),
    "debtToEquity": number or null
  },
  "technical": {
    "currentPrice": number or null (INR),
    "weekHigh52": number or null (INR),
    "weekLow52": number or null (INR),
    "rsi14": number or null (Relative Strength Index),
    "priceVsSMA200": number or null (percentage above/below),
    "priceHistory": array of daily closes, oldest first, up to 252 entries, or null
  },
  "sentiment": {
    "analystRating": "Strong Buy" | "Buy" | "Hold" | "Sell" | "Strong Sell" | null,
    "newsSentiment": "Very Positive" | "Positive" | "Neutral" | "Negative" | "Very Negative" | null
  }
}

Use the most recent and accurate data for %[1]s from NSE India. Use null for any data point that is not available or cannot be reliably estimated.`, ticker)
}

func reasoningPrompt(req scoring.NarrativeRequest) string {
	parts := make([]string, 0, len(score.Categories))
	for _, c := range score.Categories {
		if v, ok := req.Categories[c]; ok {
			parts = append(parts, fmt.Sprintf("%s: %d/100", c, v))
		}
	}

	return fmt.Sprintf(`You have scored the NSE India stock "%s" with an overall AI score of %d/100 (%s). The category breakdown is: %s.

Explain in 4-6 sentences what drives this score, which category is the main strength, which is the main weakness, and what an investor should watch next.`,
		req.Ticker, req.Score, req.Grade, strings.Join(parts, ", "))
}
