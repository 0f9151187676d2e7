// Package model converts stored chat history into the message shapes that
// model provider SDKs expect.
//
// Core goals:
//   - Map human / AI turns onto provider roles (user / assistant)
//   - Optionally merge consecutive same-role turns and drop empty ones
//   - Keep the provider packages (openai, anthropic) thin so that callers
//     depend on a vendor SDK only when they import its sub-package
package model
